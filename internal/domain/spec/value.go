package spec

import (
	"encoding/json"
	"fmt"
)

// Value is a filter value: either a plain scalar string or a structured
// payload carrying a role (operator direction, sub-state) and the filter
// group it belongs to. Consumers branch on IsStructured instead of
// duck-typing the shape.
type Value struct {
	value      string
	role       string
	group      string
	structured bool
}

// Scalar creates a plain string value.
func Scalar(v string) Value {
	return Value{value: v}
}

// Structured creates a value with a role and optional group.
func Structured(value, role, group string) Value {
	return Value{value: value, role: role, group: group, structured: true}
}

// Text returns the underlying string regardless of shape.
func (v Value) Text() string { return v.value }

// Role returns the role tag; empty for scalar values.
func (v Value) Role() string { return v.role }

// Group returns the filter group; empty for scalar values.
func (v Value) Group() string { return v.group }

// IsStructured reports whether the value carries a role payload.
func (v Value) IsStructured() bool { return v.structured }

// IsZero reports whether the value is empty.
func (v Value) IsZero() bool { return v.value == "" && !v.structured }

type structuredValue struct {
	Value string `json:"value"`
	Role  string `json:"role,omitempty"`
	Group string `json:"group,omitempty"`
}

// MarshalJSON writes scalars as JSON strings and structured values as objects.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.structured {
		return json.Marshal(v.value) //nolint:wrapcheck // plain string
	}
	return json.Marshal(structuredValue{Value: v.value, Role: v.role, Group: v.group}) //nolint:wrapcheck
}

// UnmarshalJSON accepts both shapes the dialogue runtime may persist:
// a bare string or a {value, role, group} object.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Scalar(s)
		return nil
	}

	var sv structuredValue
	if err := json.Unmarshal(data, &sv); err != nil {
		return fmt.Errorf("filter value must be a string or an object: %w", err)
	}
	*v = Structured(sv.Value, sv.Role, sv.Group)
	return nil
}
