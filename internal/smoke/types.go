package smoke

import "time"

// Detector represents a smoke detector installed in a room.
type Detector struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	RoomName  string    `json:"room_name,omitempty"` // joined, read paths only
	CreatedAt time.Time `json:"created_at"`
}

// Event is a single smoke-level reading reported by a detector.
type Event struct {
	ID         string    `json:"id"`
	DetectorID string    `json:"detector_id"`
	Level      float64   `json:"smoke_level"`
	RoomName   string    `json:"room_name,omitempty"` // joined, read paths only
	DetectedAt time.Time `json:"detected_at"`
}
