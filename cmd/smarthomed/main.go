// smarthomed is the backend for the browser smart-home control panel.
//
// It serves rooms, devices, type-validated state transitions, smoke
// detector events, and user accounts over a REST API with WebSocket
// fan-out, backed by SQLite and an optional MQTT/InfluxDB pairing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/MelissaKhoury1/smarthome-core/migrations"

	"github.com/MelissaKhoury1/smarthome-core/internal/api"
	"github.com/MelissaKhoury1/smarthome-core/internal/auth"
	"github.com/MelissaKhoury1/smarthome-core/internal/device"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/config"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/database"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/influxdb"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/logging"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/mqtt"
	"github.com/MelissaKhoury1/smarthome-core/internal/room"
	"github.com/MelissaKhoury1/smarthome-core/internal/smoke"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run holds the application logic, separated from main so errors map to
// exit codes in one place.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting smarthomed", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	deviceRepo := device.NewSQLiteRepository(db.DB)
	roomRepo := room.NewSQLiteRepository(db.DB)
	smokeRepo := smoke.NewSQLiteRepository(db.DB)
	userRepo := auth.NewSQLiteUserRepository(db.DB)

	engine := device.NewEngine(deviceRepo)
	engine.SetLogger(log)

	authService := auth.NewService(userRepo, cfg.Security.JWT.Secret, cfg.Security.JWT.AccessTokenTTL)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("influxdb write error", "error", err)
		})
		log.Info("influxdb connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("influxdb disabled")
	}

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log,
		Engine:     engine,
		DeviceRepo: deviceRepo,
		RoomRepo:   roomRepo,
		SmokeRepo:  smokeRepo,
		Auth:       authService,
		Influx:     influxClient,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting api server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing api server", "error", closeErr)
		}
	}()

	// MQTT ingest is optional; without it smoke events arrive only via
	// whatever wrote them to the store directly.
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("mqtt connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		ingestor := smoke.NewIngestor(smokeRepo, mqttClient,
			mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}, byte(cfg.MQTT.QoS))
		ingestor.SetLogger(log)
		ingestor.SetNotifier(server)
		if err := ingestor.Start(); err != nil {
			return fmt.Errorf("starting smoke ingestor: %w", err)
		}
		defer func() {
			if stopErr := ingestor.Stop(); stopErr != nil {
				log.Warn("error stopping smoke ingestor", "error", stopErr)
			}
		}()
	} else {
		log.Info("mqtt disabled")
	}

	log.Info("smarthomed ready", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// getConfigPath returns the config path from SMARTHOME_CONFIG or the
// default location.
func getConfigPath() string {
	if path := os.Getenv("SMARTHOME_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
