package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MelissaKhoury1/smarthome-core/internal/device"
)

// createDeviceRequest is the payload for POST /devices.
type createDeviceRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Status string `json:"status"` // ON/OFF, defaults to OFF
}

// setStatusRequest is the payload for PUT /devices/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// setValueRequest is the payload for PUT /devices/{id}/value.
type setValueRequest struct {
	Value string `json:"value"`
}

// handleListDevices returns all devices with room and status joined.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.deviceRepo.List(r.Context())
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleGetDevice returns a single device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.deviceRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleCreateDevice creates a device with its value seeded from the
// type's registry default.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Type == "" || req.RoomID == "" {
		writeBadRequest(w, "name, type, and room_id are required")
		return
	}

	status := req.Status
	if status == "" {
		status = device.StatusOff
	}
	statusID, err := s.engine.ResolveStatus(r.Context(), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dev, err := s.engine.CreateDevice(r.Context(), device.NewDeviceParams{
		Name:     req.Name,
		Type:     device.NormalizeType(req.Type),
		RoomID:   req.RoomID,
		StatusID: statusID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.deviceRepo.GetByID(r.Context(), dev.ID)
	if err != nil {
		// The insert succeeded; fall back to the bare record.
		writeJSON(w, http.StatusCreated, dev)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteDevice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetDeviceStatus toggles a device ON or OFF.
func (s *Server) handleSetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Status == "" {
		writeBadRequest(w, "status is required")
		return
	}

	if err := s.engine.ApplyStatusChange(r.Context(), id, req.Status); err != nil {
		writeDomainError(w, err)
		return
	}

	dev, err := s.deviceRepo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.broadcastDeviceStatus(dev)
	writeJSON(w, http.StatusOK, dev)
}

// handleSetDeviceValue validates and applies a value change, returning
// the canonical stored form.
func (s *Server) handleSetDeviceValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	canonical, err := s.engine.ApplyValueChange(r.Context(), id, req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if dev, err := s.deviceRepo.GetByID(r.Context(), id); err == nil {
		s.broadcastDeviceValue(dev)
	}

	writeJSON(w, http.StatusOK, map[string]string{"value": canonical})
}

// broadcastDeviceStatus fans a status transition out to panels and the
// optional state-history sink.
func (s *Server) broadcastDeviceStatus(dev *device.Device) {
	if s.hub != nil {
		s.hub.Broadcast(ChannelDeviceStatus, dev)
	}
	if s.influx != nil {
		s.influx.WriteDeviceState(dev.ID, dev.RoomID, string(dev.Type), "", dev.Status)
	}
}

// broadcastDeviceValue fans a value transition out to panels and the
// optional state-history sink.
func (s *Server) broadcastDeviceValue(dev *device.Device) {
	if s.hub != nil {
		s.hub.Broadcast(ChannelDeviceValue, dev)
	}
	if s.influx != nil && dev.Value != nil {
		s.influx.WriteDeviceState(dev.ID, dev.RoomID, string(dev.Type), *dev.Value, "")
	}
}
