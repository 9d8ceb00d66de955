package merge

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/suggestion"
	"github.com/nuvet/searchdialog/internal/domain/turn"
	"github.com/nuvet/searchdialog/internal/metrics"
	modificationuc "github.com/nuvet/searchdialog/internal/usecase/modification"
	"github.com/nuvet/searchdialog/internal/vocabulary"
)

// Pending-suggestion lifecycle events, for metrics.
const (
	eventCreated   = "created"
	eventFollowed  = "followed"
	eventRejected  = "rejected"
	eventAbandoned = "abandoned"
)

func suggestionEvent(typ suggestion.Type, event string) {
	metrics.SuggestionsTotal.WithLabelValues(string(typ), event).Inc()
}

// resolvePending applies the pending-suggestion lifecycle before the turn
// is dispatched. It reports whether the turn was fully consumed here.
func (s *Service) resolvePending(ctx context.Context, t *txn) bool {
	p := t.state.Pending
	if p.IsZero() {
		return false
	}

	if p.Expired(t.now) || p.Exhausted() {
		s.logger.Debug("pending suggestion abandoned",
			zap.String("type", string(p.Type)),
			zap.Int("attempts", p.ClarificationAttempts),
		)
		suggestionEvent(p.Type, eventAbandoned)
		t.clearPending()
		return false
	}

	switch t.in.Intent {
	case turn.IntentAffirm:
		return s.acceptPending(ctx, t, p)
	case turn.IntentDeny:
		suggestionEvent(p.Type, eventRejected)
		t.clearPending()
		t.say("Entendido, lo descarto. ¿Qué más puedo buscar para vos?")
		t.setEngagement(turn.EngagementTopicChanged)
		t.outcome = outcomeSuggestion
		return true
	}

	switch p.Type {
	case suggestion.MissingParameters:
		// a same-kind search or an order completion carries the missing
		// data; the search flow merges the stored parameters itself
		if t.in.Intent == turn.IntentCompleteOrder ||
			(t.in.IsSearchIntent() && spec.KindFromIntent(t.in.Intent) == p.SearchKind) {
			return false
		}
	case suggestion.EntityCorrection, suggestion.TypeCorrection:
		if mentionsSuggestion(t.in, p) {
			// the user typed the corrected value themselves
			suggestionEvent(p.Type, eventFollowed)
			t.clearPending()
			return false
		}
	}

	// anything else ignores the suggestion; a kind switch or a
	// non-search turn also signals a topic change
	suggestionEvent(p.Type, eventAbandoned)
	t.clearPending()
	switched := t.in.IsSearchIntent() && p.SearchKind != "" &&
		spec.KindFromIntent(t.in.Intent) != p.SearchKind
	unrelated := !t.in.IsSearchIntent() && !t.in.IsModificationIntent() &&
		t.in.Intent != turn.IntentCompleteOrder
	if switched || unrelated {
		t.setEngagement(turn.EngagementTopicChanged)
	}
	return false
}

// acceptPending handles an affirmative answer to the pending suggestion.
func (s *Service) acceptPending(_ context.Context, t *txn, p suggestion.Pending) bool {
	switch p.Type {
	case suggestion.EntityCorrection:
		best := p.TopSuggestion()
		if best == "" {
			t.clearPending()
			return false
		}
		params := p.Parameters.Clone()
		params.Set(p.EntityType, spec.Scalar(best))
		suggestionEvent(p.Type, eventFollowed)
		t.clearPending()
		s.executeSearch(t, p.SearchKind, params, domcmp.Result{}, searchActionNew)
		return true

	case suggestion.TypeCorrection:
		params := p.Parameters.Clone()
		params.Set(p.CorrectType, spec.Scalar(p.OriginalValue))
		suggestionEvent(p.Type, eventFollowed)
		t.clearPending()
		s.executeSearch(t, p.SearchKind, params, domcmp.Result{}, searchActionNew)
		return true

	case suggestion.MissingParameters:
		// yes alone adds no parameters, so ask again
		p.ClarificationAttempts++
		t.setPending(p)
		t.say("Sí, pero necesito más datos. Especifica al menos: " +
			humanCriteria(p.RequiredCriteria))
		t.setEngagement(turn.EngagementAwaitingParams)
		t.outcome = outcomeSuggestion
		return true

	case suggestion.ModificationConfirm:
		applied, notes := modificationuc.Apply(p.Parameters, p.PendingActions)
		suggestionEvent(p.Type, eventFollowed)
		t.clearPending()
		if len(notes) > 0 {
			t.say("Nota: " + strings.Join(notes, "; ") + ".")
		}
		kind := p.SearchKind
		if applied.Kind() != "" {
			kind = applied.Kind()
		}
		s.executeSearch(t, kind, applied, domcmp.Result{}, searchActionModify)
		return true

	case suggestion.InvalidEntityMod:
		// switch to the search kind where the filter applies, carrying
		// over the filters that remain valid there
		params := spec.New(p.SearchKind)
		for _, key := range p.Parameters.Keys() {
			if kindAccepts(p.SearchKind, key) {
				if v, ok := p.Parameters.Get(key); ok {
					params.Set(key, v)
				}
			}
		}
		params.Set(p.EntityType, spec.Scalar(p.OriginalValue))
		suggestionEvent(p.Type, eventFollowed)
		t.clearPending()
		s.executeSearch(t, p.SearchKind, params, domcmp.Result{}, searchActionNew)
		return true
	}

	t.clearPending()
	return false
}

// mentionsSuggestion reports whether the turn carries a suggested value,
// either as an entity or verbatim in the text.
func mentionsSuggestion(in turn.Input, p suggestion.Pending) bool {
	targets := p.Suggestions
	if p.Type == suggestion.TypeCorrection {
		targets = []string{p.OriginalValue}
	}
	foldedText := vocabulary.Fold(in.Text)
	for _, target := range targets {
		folded := vocabulary.Fold(target)
		if folded == "" {
			continue
		}
		if strings.Contains(foldedText, folded) {
			return true
		}
		for _, e := range in.Entities {
			if vocabulary.Fold(e.Value) == folded {
				return true
			}
		}
	}
	return false
}

func kindAccepts(kind spec.Kind, entityType string) bool {
	for _, k := range modificationuc.ValidKindsFor(entityType) {
		if k == kind {
			return true
		}
	}
	return false
}
