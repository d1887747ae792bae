package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MelissaKhoury1/smarthome-core/internal/auth"
	"github.com/MelissaKhoury1/smarthome-core/internal/device"
	"github.com/MelissaKhoury1/smarthome-core/internal/room"
	"github.com/MelissaKhoury1/smarthome-core/internal/smoke"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps domain sentinel errors onto HTTP responses.
// Validation failures carry the violated constraint in the message so
// the client can correct input without another round trip. Anything
// unrecognised becomes a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound),
		errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, smoke.ErrDetectorNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		writeNotFound(w, err.Error())

	case errors.Is(err, device.ErrDeviceExists),
		errors.Is(err, room.ErrRoomExists):
		writeConflict(w, err.Error())

	case errors.Is(err, auth.ErrEmailExists):
		writeConflict(w, "email already registered")

	case errors.Is(err, device.ErrNotANumber),
		errors.Is(err, device.ErrOutOfRange),
		errors.Is(err, device.ErrInvalidEnumValue),
		errors.Is(err, device.ErrValueNotSupported):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())

	case errors.Is(err, device.ErrUnknownType),
		errors.Is(err, device.ErrStatusNotFound),
		errors.Is(err, device.ErrInvalidName),
		errors.Is(err, device.ErrInvalidReference),
		errors.Is(err, room.ErrInvalidName),
		errors.Is(err, smoke.ErrInvalidName),
		errors.Is(err, smoke.ErrInvalidReference),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword):
		writeBadRequest(w, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")

	default:
		writeInternalError(w, "internal server error")
	}
}
