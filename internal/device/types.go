package device

import "time"

// DeviceType identifies the kind of device and determines which value
// domain applies to it.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// Supported device types. Adding a type means adding a registry entry in
// registry.go; nothing else in the write path changes.
const (
	TypeLight  DeviceType = "light"
	TypeAC     DeviceType = "ac"
	TypeHeater DeviceType = "heater"
	TypeFan    DeviceType = "fan"
	TypeBlinds DeviceType = "blinds"
)

// Device represents a controllable entity in a room.
//
// Value is a free-form string whose legality is determined by the value
// domain of Type: the registry and engine together guarantee that a
// persisted non-nil Value always belongs to that domain.
type Device struct {
	ID     string     `json:"id"`
	RoomID string     `json:"room_id"`
	Name   string     `json:"name"`
	Type   DeviceType `json:"type"`

	// StatusID references the statuses table; Status carries the joined
	// value (ON/OFF) on reads.
	StatusID string `json:"status_id"`
	Status   string `json:"status,omitempty"`

	// Value is nil for status-only types (lights).
	Value *string `json:"value,omitempty"`

	// RoomName carries the joined room name on list reads.
	RoomName string `json:"room_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status is binary operational reference data (ON/OFF).
type Status struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Status values seeded by the initial migration.
const (
	StatusOn  = "ON"
	StatusOff = "OFF"
)
