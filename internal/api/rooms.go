package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MelissaKhoury1/smarthome-core/internal/room"
)

// createRoomRequest is the payload for POST /rooms.
type createRoomRequest struct {
	Name string `json:"name"`
}

// handleListRooms returns all rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.roomRepo.List(r.Context())
	if err != nil {
		s.logger.Error("listing rooms", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleGetRoom returns a single room.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.roomRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleCreateRoom creates a room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rm := &room.Room{Name: req.Name}
	if err := s.roomRepo.Create(r.Context(), rm); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rm)
}

// handleDeleteRoom removes a room and its devices in one transaction.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.roomRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListRoomDevices returns the devices in one room.
func (s *Server) handleListRoomDevices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Distinguish an empty room from a missing one.
	if _, err := s.roomRepo.GetByID(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	devices, err := s.deviceRepo.ListByRoom(r.Context(), id)
	if err != nil {
		s.logger.Error("listing room devices", "room_id", id, "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
