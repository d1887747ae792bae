package room

import "errors"

var (
	// ErrRoomNotFound indicates the requested room does not exist.
	ErrRoomNotFound = errors.New("room: not found")

	// ErrRoomExists indicates a room with the same name already exists.
	ErrRoomExists = errors.New("room: name already in use")

	// ErrInvalidName indicates the room name failed validation.
	ErrInvalidName = errors.New("room: invalid name")
)
