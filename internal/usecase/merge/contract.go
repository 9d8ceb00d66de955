package merge

import (
	"context"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
	"github.com/nuvet/searchdialog/internal/domain/entity"
	dommod "github.com/nuvet/searchdialog/internal/domain/modification"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/suggestion"
	"github.com/nuvet/searchdialog/internal/domain/turn"
	modificationuc "github.com/nuvet/searchdialog/internal/usecase/modification"
)

// Repository defines the storage contract for conversation context.
type Repository interface {
	Get(ctx context.Context, conversationID string) (turn.Context, error)
	Put(ctx context.Context, conversationID string, state turn.Context) error
	Delete(ctx context.Context, conversationID string) error
}

// Vocabulary validates entity values against the known lookup tables.
type Vocabulary interface {
	Has(entityType string) bool
	Canonical(entityType, value string) (string, bool)
	FindType(value string) (string, bool)
}

// Suggester ranks correction candidates for an invalid value.
type Suggester interface {
	Suggest(entityType, value string, max int) []suggestion.Candidate
}

// Normalizer resolves raw NLU entity tags into typed entities.
type Normalizer interface {
	Normalize(raw []entity.Raw) []entity.Normalized
}

// ComparisonDetector finds comparative expressions in the turn text.
type ComparisonDetector interface {
	Detect(text string, entities []entity.Normalized) domcmp.Result
}

// ModificationDetector derives filter actions from a modification turn.
type ModificationDetector interface {
	Detect(
		sub modificationuc.SubIntent, text string,
		entities []entity.Normalized, current spec.Spec, experience string,
	) dommod.Result
}

// Assistant rebuilds search parameters with a language model when the
// rule-based modification path cannot decide. Optional.
type Assistant interface {
	RebuildParameters(ctx context.Context, previous spec.Spec, text string, kind spec.Kind) (spec.Spec, error)
}
