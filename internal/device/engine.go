package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// maxNameLength bounds device names, matching the room package.
const maxNameLength = 100

// Logger defines the logging interface used by the Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Engine validates and applies device state transitions.
//
// Every write path goes through the engine so the invariant holds: a
// persisted Device.Value always belongs to the value domain of its type.
// Writes are single conditional UPDATEs; concurrent updates to the same
// device resolve last-write-wins at the store.
type Engine struct {
	repo   Repository
	logger Logger
}

// NewEngine creates a transition engine backed by the given repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// ValidateValue checks a proposed value against the value domain of the
// device type and returns its canonical form.
//
// Numeric-range types parse base-10 and canonicalise to the plain decimal
// string ("017" becomes "17"). Enumeration types match case-insensitively
// and canonicalise to lower case. Status-only types reject values outright,
// and unregistered types fail ErrUnknownType on every path.
func ValidateValue(t DeviceType, proposed string) (string, error) {
	domain, err := DomainFor(t)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	switch domain.Kind {
	case DomainNumericRange:
		n, err := strconv.Atoi(strings.TrimSpace(proposed))
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrNotANumber, proposed)
		}
		if n < domain.Min || n > domain.Max {
			return "", fmt.Errorf("%w: must be between %d and %d", ErrOutOfRange, domain.Min, domain.Max)
		}
		return strconv.Itoa(n), nil

	case DomainEnumeration:
		canonical := strings.ToLower(strings.TrimSpace(proposed))
		for _, allowed := range domain.Allowed {
			if canonical == allowed {
				return canonical, nil
			}
		}
		return "", fmt.Errorf("%w: must be one of %s", ErrInvalidEnumValue, strings.Join(domain.Allowed, ", "))

	default:
		return "", fmt.Errorf("%w: %q", ErrValueNotSupported, t)
	}
}

// ApplyValueChange validates a proposed value for a device and persists the
// canonical form.
//
// The device's type is resolved first (ErrDeviceNotFound if the ID is
// unknown), then the value is validated per ValidateValue, then a single
// conditional UPDATE is issued. A zero-row write also fails
// ErrDeviceNotFound: the device may have been deleted between the type
// lookup and the write, which is tolerated rather than treated as a fault.
//
// The canonical value is returned so the caller's view stays consistent
// with what was stored.
func (e *Engine) ApplyValueChange(ctx context.Context, deviceID, proposed string) (string, error) {
	t, err := e.repo.TypeOf(ctx, deviceID)
	if err != nil {
		return "", err
	}

	canonical, err := ValidateValue(t, proposed)
	if err != nil {
		return "", err
	}

	if err := e.repo.UpdateValue(ctx, deviceID, canonical); err != nil {
		return "", err
	}

	e.logger.Debug("device value updated",
		"device_id", deviceID,
		"type", t,
		"value", canonical,
	)
	return canonical, nil
}

// ApplyStatusChange resolves the requested status (case-insensitive ON/OFF)
// and persists it for the device.
//
// Fails ErrStatusNotFound if no statuses row matches, ErrDeviceNotFound if
// the write affects zero rows. Repeating a status the device already has
// repeats the write without error.
func (e *Engine) ApplyStatusChange(ctx context.Context, deviceID, requested string) error {
	statusID, err := e.ResolveStatus(ctx, requested)
	if err != nil {
		return err
	}

	if err := e.repo.UpdateStatus(ctx, deviceID, statusID); err != nil {
		return err
	}

	e.logger.Debug("device status updated",
		"device_id", deviceID,
		"status_id", statusID,
	)
	return nil
}

// ResolveStatus maps a status value (case-insensitive ON/OFF) to its
// statuses row ID. Fails ErrStatusNotFound for anything else.
func (e *Engine) ResolveStatus(ctx context.Context, value string) (string, error) {
	return e.repo.ResolveStatusID(ctx, strings.ToUpper(strings.TrimSpace(value)))
}

// NewDeviceParams holds the caller-supplied fields for device creation.
type NewDeviceParams struct {
	Name     string
	Type     DeviceType
	RoomID   string
	StatusID string
}

// CreateDevice creates a device with its value seeded from the type's
// registry default.
//
// Fails ErrInvalidName for empty/oversized names, ErrUnknownType for types
// with no registry entry, and ErrDeviceExists when the room already has a
// device with the same name. The pre-check keeps the common case friendly;
// the UNIQUE(room_id, name) constraint closes the race.
func (e *Engine) CreateDevice(ctx context.Context, p NewDeviceParams) (*Device, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}

	if !IsValidType(p.Type) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
	}

	exists, err := e.repo.NameExistsInRoom(ctx, p.RoomID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDeviceExists, name)
	}

	value, err := DefaultValueFor(p.Type)
	if err != nil {
		return nil, err
	}

	dev := &Device{
		RoomID:   p.RoomID,
		Name:     name,
		Type:     p.Type,
		StatusID: p.StatusID,
		Value:    value,
	}
	if err := e.repo.Create(ctx, dev); err != nil {
		return nil, err
	}

	e.logger.Info("device created",
		"device_id", dev.ID,
		"room_id", dev.RoomID,
		"type", dev.Type,
	)
	return dev, nil
}

// DeleteDevice removes a device.
// Fails ErrDeviceNotFound if the ID does not exist.
func (e *Engine) DeleteDevice(ctx context.Context, deviceID string) error {
	if err := e.repo.Delete(ctx, deviceID); err != nil {
		return err
	}
	e.logger.Info("device deleted", "device_id", deviceID)
	return nil
}
