package device

import "strings"

// DomainKind discriminates the value-domain variants.
type DomainKind string

// Value-domain variants.
const (
	// DomainNone marks status-only types with no value (lights).
	DomainNone DomainKind = "none"

	// DomainNumericRange accepts integers in [Min, Max].
	DomainNumericRange DomainKind = "numeric_range"

	// DomainEnumeration accepts members of Allowed, case-insensitively.
	DomainEnumeration DomainKind = "enumeration"
)

// ValueDomain describes the legal values for a device type.
type ValueDomain struct {
	Kind    DomainKind `json:"kind"`
	Min     int        `json:"min,omitempty"`
	Max     int        `json:"max,omitempty"`
	Allowed []string   `json:"allowed,omitempty"`
}

// TypeInfo is a registry entry exposed over the API so clients can render
// type-appropriate controls without hardcoding the rules.
type TypeInfo struct {
	Name    DeviceType  `json:"name"`
	Domain  ValueDomain `json:"domain"`
	Default *string     `json:"default_value,omitempty"`
}

// Temperature range shared by AC and heater devices (degrees Celsius).
const (
	TempMin = 17
	TempMax = 30
)

// Fan speed levels.
var fanSpeeds = []string{"low", "medium", "high"}

// Blind positions.
var blindPositions = []string{"open", "half-open", "closed"}

// registry is the single authoritative mapping from device type to value
// domain and creation default. All validation paths consult this table;
// adding a type is one entry here.
var registry = map[DeviceType]TypeInfo{
	TypeLight: {
		Name:   TypeLight,
		Domain: ValueDomain{Kind: DomainNone},
	},
	TypeAC: {
		Name:    TypeAC,
		Domain:  ValueDomain{Kind: DomainNumericRange, Min: TempMin, Max: TempMax},
		Default: strPtr("20"),
	},
	TypeHeater: {
		Name:    TypeHeater,
		Domain:  ValueDomain{Kind: DomainNumericRange, Min: TempMin, Max: TempMax},
		Default: strPtr("24"),
	},
	TypeFan: {
		Name:    TypeFan,
		Domain:  ValueDomain{Kind: DomainEnumeration, Allowed: fanSpeeds},
		Default: strPtr("low"),
	},
	TypeBlinds: {
		Name:    TypeBlinds,
		Domain:  ValueDomain{Kind: DomainEnumeration, Allowed: blindPositions},
		Default: strPtr("open"),
	},
}

// typeOrder fixes the listing order for AllTypes.
var typeOrder = []DeviceType{TypeLight, TypeAC, TypeHeater, TypeFan, TypeBlinds}

// NormalizeType lower-cases a type name so clients may send "AC" or "Light".
func NormalizeType(name string) DeviceType {
	return DeviceType(strings.ToLower(strings.TrimSpace(name)))
}

// DomainFor returns the value domain for a device type.
// Returns ErrUnknownType for types with no registry entry.
func DomainFor(t DeviceType) (ValueDomain, error) {
	info, ok := registry[t]
	if !ok {
		return ValueDomain{}, ErrUnknownType
	}
	return info.Domain, nil
}

// DefaultValueFor returns the canonical initial value used on device
// creation. A nil value means the type is status-only.
// Returns ErrUnknownType for types with no registry entry.
func DefaultValueFor(t DeviceType) (*string, error) {
	info, ok := registry[t]
	if !ok {
		return nil, ErrUnknownType
	}
	if info.Default == nil {
		return nil, nil
	}
	v := *info.Default
	return &v, nil
}

// IsValidType reports whether the type has a registry entry.
func IsValidType(t DeviceType) bool {
	_, ok := registry[t]
	return ok
}

// AllTypes returns every registry entry in a stable order.
func AllTypes() []TypeInfo {
	infos := make([]TypeInfo, 0, len(typeOrder))
	for _, t := range typeOrder {
		infos = append(infos, registry[t])
	}
	return infos
}

func strPtr(s string) *string {
	return &s
}
