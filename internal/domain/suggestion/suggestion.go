// Package suggestion holds pending clarification state and similarity
// candidates offered to the user.
package suggestion

import (
	"time"

	"github.com/nuvet/searchdialog/internal/domain/modification"
	"github.com/nuvet/searchdialog/internal/domain/spec"
)

// Type classifies a pending suggestion.
type Type string

// Pending suggestion types.
const (
	EntityCorrection    Type = "entity_correction"
	TypeCorrection      Type = "type_correction"
	MissingParameters   Type = "missing_parameters"
	ModificationConfirm Type = "modification_confirmation"
	InvalidEntityMod    Type = "invalid_entity_modification"
)

// Lifecycle limits: a pending suggestion is abandoned after the timeout or
// after the user has been asked to clarify this many times.
const (
	TTL                      = 15 * time.Minute
	MaxClarificationAttempts = 3
)

// Pending is the persisted, unresolved clarification offered to the user.
// Owned exclusively by the conversation state merger.
type Pending struct {
	Type                  Type                  `json:"suggestion_type"`
	OriginalValue         string                `json:"original_value,omitempty"`
	EntityType            string                `json:"entity_type,omitempty"`
	Suggestions           []string              `json:"suggestions,omitempty"`
	WrongType             string                `json:"wrong_type,omitempty"`
	CorrectType           string                `json:"correct_type,omitempty"`
	SearchKind            spec.Kind             `json:"search_type,omitempty"`
	Intent                string                `json:"intent,omitempty"`
	RequiredCriteria      []string              `json:"required_criteria,omitempty"`
	Parameters            spec.Spec             `json:"current_parameters,omitempty"`
	ComparatorOps         map[string]string     `json:"comparator_operators,omitempty"`
	PendingActions        []modification.Action `json:"pending_actions,omitempty"`
	CreatedAt             time.Time             `json:"timestamp"`
	AwaitingResponse      bool                  `json:"awaiting_response"`
	ClarificationAttempts int                   `json:"clarification_attempts"`
}

// IsZero reports whether there is no pending suggestion.
func (p Pending) IsZero() bool { return p.Type == "" }

// Expired reports whether the suggestion outlived its timeout.
func (p Pending) Expired(now time.Time) bool {
	return !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) > TTL
}

// Exhausted reports whether clarification attempts ran out.
func (p Pending) Exhausted() bool {
	return p.ClarificationAttempts >= MaxClarificationAttempts
}

// TopSuggestion returns the best candidate value, if any.
func (p Pending) TopSuggestion() string {
	if len(p.Suggestions) == 0 {
		return ""
	}
	return p.Suggestions[0]
}
