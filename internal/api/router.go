package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MelissaKhoury1/smarthome-core/internal/device"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Get("/health", s.handleHealth)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Post("/", s.handleCreateRoom)
				r.Get("/{id}", s.handleGetRoom)
				r.Delete("/{id}", s.handleDeleteRoom)
				r.Get("/{id}/devices", s.handleListRoomDevices)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Put("/status", s.handleSetDeviceStatus)
					r.Put("/value", s.handleSetDeviceValue)
				})
			})

			r.Get("/types", s.handleListTypes)
			r.Get("/statuses", s.handleListStatuses)

			r.Get("/smoke-events", s.handleListSmokeEvents)
			r.Route("/smoke-detectors", func(r chi.Router) {
				r.Get("/", s.handleListDetectors)
				r.Post("/", s.handleCreateDetector)
			})

			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleListTypes serves the device type registry: each type with its
// value domain and creation default.
func (s *Server) handleListTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, device.AllTypes())
}

// handleListStatuses serves the status reference data.
func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.deviceRepo.ListStatuses(r.Context())
	if err != nil {
		s.logger.Error("listing statuses", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
