// Package api provides the HTTP REST API and WebSocket server for the
// smart-home control panel backend.
//
// It exposes room and device CRUD, type-validated state transitions,
// smoke-detector events, and account endpoints to browser panels.
//
// The server follows the same lifecycle as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MelissaKhoury1/smarthome-core/internal/auth"
	"github.com/MelissaKhoury1/smarthome-core/internal/device"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/config"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/influxdb"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/logging"
	"github.com/MelissaKhoury1/smarthome-core/internal/room"
	"github.com/MelissaKhoury1/smarthome-core/internal/smoke"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	Engine     *device.Engine
	DeviceRepo device.Repository
	RoomRepo   room.Repository
	SmokeRepo  smoke.Repository
	Auth       *auth.Service
	Influx     *influxdb.Client // optional state-history sink
	Version    string
}

// Server is the HTTP API server.
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	engine     *device.Engine
	deviceRepo device.Repository
	roomRepo   room.Repository
	smokeRepo  smoke.Repository
	auth       *auth.Service
	influx     *influxdb.Client
	version    string
	server     *http.Server
	hub        *Hub
	cancel     context.CancelFunc
}

// New creates an API server with the given dependencies.
// The server does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("device engine is required")
	}
	if deps.DeviceRepo == nil || deps.RoomRepo == nil {
		return nil, fmt.Errorf("device and room repositories are required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		engine:     deps.Engine,
		deviceRepo: deps.DeviceRepo,
		roomRepo:   deps.RoomRepo,
		smokeRepo:  deps.SmokeRepo,
		auth:       deps.Auth,
		influx:     deps.Influx,
		version:    deps.Version,
	}, nil
}

// Start builds the router, starts the WebSocket hub, and launches the
// HTTP listener in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("api server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("api server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server, waiting for in-flight
// requests up to the shutdown timeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("api server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
