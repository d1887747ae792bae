package device

import "errors"

// Domain errors for the device package. Callers branch with errors.Is:
//
//	if errors.Is(err, device.ErrOutOfRange) {
//	    // report the violated constraint to the client
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist,
	// including when a conditional write affects zero rows.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when a device with the same name already
	// exists in the same room. Uniqueness is scoped to the room, not global.
	ErrDeviceExists = errors.New("device: name already exists in room")

	// ErrUnknownType is returned when a device type has no registry entry.
	// Applied uniformly on every path: creation, validation, value updates.
	ErrUnknownType = errors.New("device: unknown type")

	// ErrNotANumber is returned when a numeric-range type receives a value
	// that does not parse as a base-10 integer.
	ErrNotANumber = errors.New("device: value is not a number")

	// ErrOutOfRange is returned when a parsed integer lies outside the
	// type's accepted range.
	ErrOutOfRange = errors.New("device: value out of range")

	// ErrInvalidEnumValue is returned when an enumeration type receives a
	// value outside its allowed set.
	ErrInvalidEnumValue = errors.New("device: invalid value")

	// ErrValueNotSupported is returned when a value update targets a
	// status-only type such as a light.
	ErrValueNotSupported = errors.New("device: type does not accept a value")

	// ErrStatusNotFound is returned when a requested status does not
	// resolve to a statuses row.
	ErrStatusNotFound = errors.New("device: status not found")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidReference is returned when an insert fails because the
	// referenced room or status does not exist.
	ErrInvalidReference = errors.New("device: room or status does not exist")
)
