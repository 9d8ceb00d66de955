// Package modification defines the actions a modification turn applies to a
// prior search specification.
package modification

import (
	"errors"
	"fmt"

	"github.com/nuvet/searchdialog/internal/domain/spec"
)

// ActionType classifies a single modification action.
type ActionType string

// Supported action types.
const (
	Replace      ActionType = "replace"
	AddFilter    ActionType = "add_filter"
	RemoveFilter ActionType = "remove_filter"
)

// ErrInvalidAction marks an action that violates its type's shape.
var ErrInvalidAction = errors.New("invalid modification action")

// Action is one change to apply to the search specification.
// A replace requires both old and new values. A remove with no OldValue
// removes the whole filter; with one present it removes only that value.
type Action struct {
	Type       ActionType `json:"type"`
	EntityType string     `json:"entity_type"`
	OldValue   string     `json:"old_value,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	Confidence float64    `json:"confidence"`
}

// Validate checks the action shape for its type.
func (a Action) Validate() error {
	if a.EntityType == "" {
		return fmt.Errorf("%w: entity type is required", ErrInvalidAction)
	}
	switch a.Type {
	case Replace:
		if a.OldValue == "" || a.NewValue == "" {
			return fmt.Errorf("%w: replace needs both old and new values", ErrInvalidAction)
		}
	case AddFilter:
		if a.NewValue == "" {
			return fmt.Errorf("%w: add_filter needs a new value", ErrInvalidAction)
		}
	case RemoveFilter:
		// OldValue optional: absent means whole-filter removal.
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

// InvalidEntity reports an action whose entity type does not belong to the
// current search kind, with the kinds where it would be valid.
type InvalidEntity struct {
	EntityType string      `json:"entity_type"`
	Value      string      `json:"value,omitempty"`
	ValidIn    []spec.Kind `json:"valid_in"`
}

// Result is the outcome of modification detection for one turn.
type Result struct {
	Detected            bool
	Actions             []Action
	InvalidActions      []Action
	InvalidEntities     []InvalidEntity
	NeedsConfirmation   bool
	ConfirmationReason  string
	ConfirmationMessage string
	Confidence          float64
}
