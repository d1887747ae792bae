package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MelissaKhoury1/smarthome-core/internal/smoke"
)

// createDetectorRequest is the payload for POST /smoke-detectors.
type createDetectorRequest struct {
	Name   string `json:"name"`
	RoomID string `json:"room_id"`
}

// handleListSmokeEvents returns recent smoke events, newest first.
// An optional ?limit= query caps the result count.
func (s *Server) handleListSmokeEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.smokeRepo.ListEvents(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing smoke events", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleListDetectors returns all smoke detectors.
func (s *Server) handleListDetectors(w http.ResponseWriter, r *http.Request) {
	detectors, err := s.smokeRepo.ListDetectors(r.Context())
	if err != nil {
		s.logger.Error("listing detectors", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, detectors)
}

// NotifySmokeEvent fans a persisted detector reading out to panels and
// the optional state-history sink. Satisfies the smoke ingestor's
// notifier interface.
func (s *Server) NotifySmokeEvent(event smoke.Event) {
	if s.hub != nil {
		s.hub.NotifySmokeEvent(event)
	}
	if s.influx != nil {
		s.influx.WriteSmokeLevel(event.DetectorID, event.Level, event.DetectedAt)
	}
}

// handleCreateDetector registers a smoke detector in a room.
func (s *Server) handleCreateDetector(w http.ResponseWriter, r *http.Request) {
	var req createDetectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.RoomID == "" {
		writeBadRequest(w, "name and room_id are required")
		return
	}

	detector := &smoke.Detector{Name: req.Name, RoomID: req.RoomID}
	if err := s.smokeRepo.CreateDetector(r.Context(), detector); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detector)
}
