// Package spec defines the structured search specification built across
// conversation turns.
package spec

import (
	"encoding/json"
	"sort"
	"strings"
)

// Spec is the search specification: a search kind plus a mapping from
// filter key (canonical entity type) to its value. Multi-valued filters
// are comma-joined; grouped filters carry role and group on the value.
type Spec struct {
	kind    Kind
	filters map[string]Value
}

// New creates an empty specification for the given kind.
func New(kind Kind) Spec {
	return Spec{kind: kind, filters: make(map[string]Value)}
}

// Kind returns the search kind.
func (s Spec) Kind() Kind { return s.kind }

// SetKind returns a copy of the spec with the kind replaced.
func (s Spec) SetKind(kind Kind) Spec {
	c := s.Clone()
	c.kind = kind
	return c
}

// Get returns the value for a filter key.
func (s Spec) Get(key string) (Value, bool) {
	v, ok := s.filters[key]
	return v, ok
}

// Set stores a value under a filter key, replacing any previous value.
func (s *Spec) Set(key string, v Value) {
	if s.filters == nil {
		s.filters = make(map[string]Value)
	}
	s.filters[key] = v
}

// Delete removes a filter key. Reports whether it was present.
func (s *Spec) Delete(key string) bool {
	if _, ok := s.filters[key]; !ok {
		return false
	}
	delete(s.filters, key)
	return true
}

// Has reports whether the filter key is present.
func (s Spec) Has(key string) bool {
	_, ok := s.filters[key]
	return ok
}

// Len returns the number of filters.
func (s Spec) Len() int { return len(s.filters) }

// Keys returns the filter keys in sorted order.
func (s Spec) Keys() []string {
	keys := make([]string, 0, len(s.filters))
	for k := range s.filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddValue appends a value to a filter, comma-joining with existing values.
// Adding a value that is already present is a no-op; reports whether the
// spec changed.
func (s *Spec) AddValue(key, value string) bool {
	cur, ok := s.filters[key]
	if !ok {
		s.Set(key, Scalar(value))
		return true
	}
	for _, existing := range splitValues(cur.Text()) {
		if strings.EqualFold(existing, value) {
			return false
		}
	}
	joined := cur.Text() + "," + value
	if cur.IsStructured() {
		s.Set(key, Structured(joined, cur.Role(), cur.Group()))
	} else {
		s.Set(key, Scalar(joined))
	}
	return true
}

// RemoveValue removes one value from a multi-valued filter. When the last
// value goes, the filter key is deleted. Reports whether the spec changed.
func (s *Spec) RemoveValue(key, value string) bool {
	cur, ok := s.filters[key]
	if !ok {
		return false
	}
	values := splitValues(cur.Text())
	kept := values[:0]
	for _, v := range values {
		if !strings.EqualFold(v, value) {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(values) {
		return false
	}
	if len(kept) == 0 {
		delete(s.filters, key)
		return true
	}
	joined := strings.Join(kept, ",")
	if cur.IsStructured() {
		s.Set(key, Structured(joined, cur.Role(), cur.Group()))
	} else {
		s.Set(key, Scalar(joined))
	}
	return true
}

// Clone returns a deep copy.
func (s Spec) Clone() Spec {
	c := New(s.kind)
	for k, v := range s.filters {
		c.filters[k] = v
	}
	return c
}

// Merge overlays the other spec's filters on top of this one and returns
// the result. The receiver's kind is kept unless the other has one set.
func (s Spec) Merge(other Spec) Spec {
	out := s.Clone()
	if other.kind != "" {
		out.kind = other.kind
	}
	for k, v := range other.filters {
		out.filters[k] = v
	}
	return out
}

// Parameters returns the filters as a plain map, for message payloads.
func (s Spec) Parameters() map[string]Value {
	out := make(map[string]Value, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

func splitValues(joined string) []string {
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type specJSON struct {
	Kind    Kind             `json:"kind"`
	Filters map[string]Value `json:"filters"`
}

// MarshalJSON implements json.Marshaler.
func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(specJSON{Kind: s.kind, Filters: s.filters}) //nolint:wrapcheck
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw specJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint:wrapcheck
	}
	s.kind = raw.Kind
	s.filters = raw.Filters
	if s.filters == nil {
		s.filters = make(map[string]Value)
	}
	return nil
}
