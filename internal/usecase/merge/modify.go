package merge

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
	"github.com/nuvet/searchdialog/internal/domain/entity"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/suggestion"
	"github.com/nuvet/searchdialog/internal/domain/turn"
	modificationuc "github.com/nuvet/searchdialog/internal/usecase/modification"
)

var errNoAssistant = errors.New("no assistant configured")

// modifyFlow reworks the last search according to the turn's actions,
// asking for confirmation when the change is ambiguous.
func (s *Service) modifyFlow(ctx context.Context, t *txn) {
	last, ok := t.state.LastSearch()
	if !ok {
		t.say("No hay una búsqueda activa para modificar. Decime qué querés buscar.")
		t.setEngagement(turn.EngagementNeedsHelp)
		t.outcome = outcomeHelp
		return
	}

	current := last.Parameters.Clone()
	if current.Kind() == "" {
		current = current.SetKind(last.Kind)
	}

	normalized := s.normalizer.Normalize(t.in.Entities)
	sub := modificationuc.SubIntentFor(t.in.Intent)
	res := s.modifications.Detect(sub, t.in.Text, normalized, current, t.state.ExperienceLevel())

	if !res.Detected {
		s.modifyFallback(ctx, t, last.Kind, current, normalized)
		return
	}

	if res.NeedsConfirmation {
		p := suggestion.Pending{
			Type:             suggestion.ModificationConfirm,
			SearchKind:       last.Kind,
			Intent:           t.in.Intent,
			Parameters:       current,
			PendingActions:   res.Actions,
			CreatedAt:        t.now,
			AwaitingResponse: true,
		}
		if res.ConfirmationReason == "invalid_entities" && len(res.InvalidEntities) > 0 {
			inv := res.InvalidEntities[0]
			target := last.Kind
			if len(inv.ValidIn) > 0 {
				target = inv.ValidIn[0]
			}
			p.Type = suggestion.InvalidEntityMod
			p.EntityType = inv.EntityType
			p.OriginalValue = inv.Value
			p.SearchKind = target
			p.PendingActions = nil
		}
		suggestionEvent(p.Type, eventCreated)
		t.setPending(p)
		t.say(res.ConfirmationMessage)
		t.setEngagement(turn.EngagementAwaitingConfirm)
		t.outcome = outcomeConfirmation
		return
	}

	t.clearPending()
	applied, notes := modificationuc.Apply(current, res.Actions)
	if len(notes) > 0 {
		t.say("Nota: " + strings.Join(notes, "; ") + ".")
	}
	s.executeSearch(t, last.Kind, applied, domcmp.Result{}, searchActionModify)
}

// modifyFallback handles a modification the rule-based detector could not
// decode: the assistant rebuilds the parameters, and without one the
// turn's entities are overlaid on the last search.
func (s *Service) modifyFallback(
	ctx context.Context, t *txn,
	kind spec.Kind, current spec.Spec,
	normalized []entity.Normalized,
) {
	if rebuilt, err := s.rebuildWithAssistant(ctx, current, t.in.Text, kind); err == nil {
		t.clearPending()
		s.executeSearch(t, kind, rebuilt, domcmp.Result{}, searchActionModify)
		return
	}

	built, _, _ := s.buildSpec(kind, normalized)
	if built.Len() == 0 {
		t.say("No entendí qué querés cambiar. ¿Podés decirlo de otra forma?")
		t.setEngagement(turn.EngagementNeedsHelp)
		t.outcome = outcomeHelp
		return
	}
	t.clearPending()
	s.executeSearch(t, kind, current.Merge(built), domcmp.Result{}, searchActionModify)
}

func (s *Service) rebuildWithAssistant(
	ctx context.Context, current spec.Spec, text string, kind spec.Kind,
) (spec.Spec, error) {
	if s.assistant == nil {
		return spec.Spec{}, errNoAssistant
	}
	rebuilt, err := s.assistant.RebuildParameters(ctx, current, text, kind)
	if err != nil {
		s.logger.Warn("assistant parameter rebuild failed", zap.Error(err))
		return spec.Spec{}, err
	}
	return rebuilt, nil
}
