package smoke

import "errors"

var (
	// ErrDetectorNotFound indicates the referenced detector does not exist.
	ErrDetectorNotFound = errors.New("smoke: detector not found")

	// ErrInvalidName indicates the detector name failed validation.
	ErrInvalidName = errors.New("smoke: invalid detector name")

	// ErrInvalidReference indicates the detector references a missing room.
	ErrInvalidReference = errors.New("smoke: referenced room does not exist")

	// ErrInvalidReading indicates a detector payload could not be parsed.
	ErrInvalidReading = errors.New("smoke: invalid reading payload")
)
