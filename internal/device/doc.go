// Package device implements the core of the smart-home backend: the device
// type registry and the state validator/transition engine.
//
// # Architecture
//
// The registry (registry.go) is a fixed mapping from device type to its
// value domain (numeric range, enumeration, or none) and creation default.
// It is the single edit point for type rules; the source of the original
// panel scattered this switch across three handlers.
//
// The engine (engine.go) consults the registry on every write path:
//
//	canonical, err := engine.ApplyValueChange(ctx, id, "017") // "17"
//	err = engine.ApplyStatusChange(ctx, id, "on")
//	dev, err := engine.CreateDevice(ctx, device.NewDeviceParams{...})
//
// The repository (repository.go) confines SQL to parameterized statements
// and reports zero-row conditional writes as ErrDeviceNotFound, which the
// engine treats as a tolerated race with concurrent deletion.
//
// # Invariant
//
// A persisted Device.Value, when non-nil, always belongs to the value
// domain of Device.Type. Values are stored canonically: plain decimal for
// numeric ranges, lower case for enumerations.
package device
