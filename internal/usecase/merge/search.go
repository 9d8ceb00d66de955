package merge

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
	"github.com/nuvet/searchdialog/internal/domain/entity"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/suggestion"
	"github.com/nuvet/searchdialog/internal/domain/turn"
	"github.com/nuvet/searchdialog/internal/vocabulary"
)

// Search actions reported to the downstream executor.
const (
	searchActionNew    = "new"
	searchActionModify = "modify"
)

const maxSuggestions = 3

// stateAliases maps spoken state variants to the canonical filter value.
var stateAliases = map[string]string{
	"rebajado":            "en_oferta",
	"promocion":           "en_oferta",
	"oferta":              "en_oferta",
	"con_descuento":       "en_oferta",
	"en_promocion":        "en_oferta",
	"nuevas":              "nuevo",
	"novedades":           "nuevo",
	"no_vistas":           "nuevo",
	"sin_ver":             "nuevo",
	"proximo_a_vencer":    "vence_pronto",
	"por_vencer":          "vence_pronto",
	"vencimiento_cercano": "vence_pronto",
	"ultimas_unidades":    "poco_stock",
	"stock_limitado":      "poco_stock",
	"pocas_unidades":      "poco_stock",
	"ya_vistas":           "vistas",
	"visitadas":           "vistas",
}

// requiredCriteria lists the filters a search kind needs at least one of.
var requiredCriteria = map[spec.Kind][]string{
	spec.KindProduct: {"producto", "categoria", "empresa", "animal"},
	spec.KindOffer:   {"producto", "categoria", "empresa"},
}

var readableNames = map[string]string{
	"producto":           "nombre del producto",
	"proveedor":          "proveedor",
	"categoria":          "categoría",
	"ingrediente_activo": "ingrediente activo",
	"compuesto":          "compuesto activo",
	"dosis":              "dosis",
	"cantidad":           "cantidad",
}

type invalidValue struct {
	entityType string
	value      string
}

// searchFlow runs a fresh search turn: normalize, validate, check
// completeness and execute, or leave a clarification pending.
func (s *Service) searchFlow(t *txn) {
	pending := t.state.Pending
	completing := pending.Type == suggestion.MissingParameters

	kind := spec.KindFromIntent(t.in.Intent)
	if kind == "" {
		switch {
		case completing && pending.SearchKind != "":
			kind = pending.SearchKind
		default:
			if last, ok := t.state.LastSearch(); ok {
				kind = last.Kind
			} else {
				kind = spec.KindProduct
			}
		}
	}

	normalized := s.normalizer.Normalize(t.in.Entities)
	cmp := s.comparisons.Detect(t.in.Text, normalized)
	built, danglingOps, invalids := s.buildSpec(kind, normalized)

	// invalid values come first: a correction is offered before the
	// search can proceed
	if len(invalids) > 0 {
		s.suggestCorrection(t, kind, built, invalids[0])
		return
	}

	if completing {
		built = pending.Parameters.Merge(built)
		if built.Kind() == "" {
			built = built.SetKind(kind)
		}
		// operators held from the turn that lacked an operand qualify the
		// filter once it arrives
		danglingOps = attachHeldOperators(&built, pending.ComparatorOps, danglingOps)
	}

	if built.Len() == 0 {
		if len(t.in.Entities) == 0 && !completing {
			// a bare search intent runs unfiltered
			t.clearPending()
			s.executeSearch(t, kind, built, cmp, searchActionNew)
			return
		}
		s.askMissingParameters(t, kind, built, danglingOps)
		return
	}

	if completing {
		suggestionEvent(pending.Type, eventFollowed)
	}
	t.clearPending()
	s.executeSearch(t, kind, built, cmp, searchActionNew)
}

// buildSpec validates the turn's entities into a specification. Values
// the vocabulary rejects are reported separately; entity types with no
// lookup table pass through unvalidated. Comparison operators whose target
// filter is absent this turn come back as danglingOps so the caller can
// hold them until the operand arrives.
func (s *Service) buildSpec(
	kind spec.Kind, entities []entity.Normalized,
) (out spec.Spec, danglingOps map[string]string, invalids []invalidValue) {
	out = spec.New(kind)
	var groupTargets []string
	groupOps := make(map[string]string)

	for _, e := range entities {
		if e.IsComparator() {
			target := strings.TrimSuffix(e.Group, "_filter")
			if target != "" && e.Role != "" {
				if _, seen := groupOps[target]; !seen {
					groupTargets = append(groupTargets, target)
				}
				groupOps[target] = e.Role
			}
			continue
		}

		value := strings.TrimSpace(e.Value)
		if e.Type == "estado" && e.Role != "" {
			// the state name travels in the role when the tag carried it
			value = e.Role
		}
		if value == "" {
			continue
		}

		switch {
		case e.Type == "estado":
			canonical, ok := s.canonicalState(value)
			if !ok {
				continue
			}
			value = canonical
		case s.vocab.Has(e.Type):
			canonical, ok := s.vocab.Canonical(e.Type, value)
			if !ok {
				invalids = append(invalids, invalidValue{entityType: e.Type, value: value})
				continue
			}
			value = canonical
		}
		out.AddValue(e.Type, value)
	}

	// attach comparison operators to the filters they qualify
	for _, target := range groupTargets {
		v, ok := out.Get(target)
		if !ok {
			if danglingOps == nil {
				danglingOps = make(map[string]string)
			}
			danglingOps[target] = groupOps[target]
			continue
		}
		if !v.IsStructured() {
			out.Set(target, spec.Structured(v.Text(), groupOps[target], target+"_filter"))
		}
	}
	return out, danglingOps, invalids
}

// canonicalStates is the closed set of offer state filter values.
var canonicalStates = map[string]struct{}{
	"en_oferta":    {},
	"nuevo":        {},
	"vence_pronto": {},
	"poco_stock":   {},
	"vistas":       {},
}

// canonicalState folds a spoken state into its canonical filter value.
// Values outside the known set are dropped, not passed through.
func (s *Service) canonicalState(value string) (string, bool) {
	folded := strings.ReplaceAll(vocabulary.Fold(value), " ", "_")
	if canonical, ok := stateAliases[folded]; ok {
		return canonical, true
	}
	if _, ok := canonicalStates[folded]; ok {
		return folded, true
	}
	s.logger.Warn("unknown state value dropped", zap.String("value", value))
	return "", false
}

// suggestCorrection leaves an entity or type correction pending for the
// first invalid value, or reports that nothing close exists.
func (s *Service) suggestCorrection(t *txn, kind spec.Kind, valid spec.Spec, inv invalidValue) {
	// the value may belong to a different entity type entirely
	if correct, ok := s.vocab.FindType(inv.value); ok && correct != inv.entityType {
		p := suggestion.Pending{
			Type:             suggestion.TypeCorrection,
			OriginalValue:    inv.value,
			WrongType:        inv.entityType,
			CorrectType:      correct,
			SearchKind:       kind,
			Intent:           t.in.Intent,
			Parameters:       valid,
			CreatedAt:        t.now,
			AwaitingResponse: true,
		}
		suggestionEvent(p.Type, eventCreated)
		t.setPending(p)
		t.say(fmt.Sprintf("'%s' parece ser %s, no %s. ¿Busco por %s '%s'?",
			inv.value, readableName(correct), readableName(inv.entityType),
			readableName(correct), inv.value))
		t.setEngagement(turn.EngagementAwaitingConfirm)
		t.outcome = outcomeSuggestion
		return
	}

	candidates := s.suggester.Suggest(inv.entityType, inv.value, maxSuggestions)
	if len(candidates) == 0 {
		s.logger.Debug("no correction candidates",
			zap.String("entity_type", inv.entityType), zap.String("value", inv.value))
		t.say(fmt.Sprintf("No encontré coincidencias para '%s'. Probá con otro %s.",
			inv.value, readableName(inv.entityType)))
		t.setEngagement(turn.EngagementNeedsHelp)
		t.outcome = outcomeHelp
		return
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Suggestion
	}
	p := suggestion.Pending{
		Type:             suggestion.EntityCorrection,
		OriginalValue:    inv.value,
		EntityType:       inv.entityType,
		Suggestions:      names,
		SearchKind:       kind,
		Intent:           t.in.Intent,
		Parameters:       valid,
		CreatedAt:        t.now,
		AwaitingResponse: true,
	}
	suggestionEvent(p.Type, eventCreated)
	t.setPending(p)
	t.say(fmt.Sprintf("'%s' no es válido. ¿Querías decir '%s'?", inv.value, names[0]))
	t.setEngagement(turn.EngagementAwaitingConfirm)
	t.outcome = outcomeSuggestion
}

// attachHeldOperators overlays held comparison operators with this turn's
// dangling ones, qualifies every filter that now has its operand, and
// returns the operators still waiting.
func attachHeldOperators(built *spec.Spec, held, dangling map[string]string) map[string]string {
	combined := make(map[string]string, len(held)+len(dangling))
	for target, op := range held {
		combined[target] = op
	}
	for target, op := range dangling {
		combined[target] = op
	}
	for target, op := range combined {
		v, ok := built.Get(target)
		if !ok {
			continue
		}
		if !v.IsStructured() {
			built.Set(target, spec.Structured(v.Text(), op, target+"_filter"))
		}
		delete(combined, target)
	}
	if len(combined) == 0 {
		return nil
	}
	return combined
}

// askMissingParameters asks for at least one required criterion. A repeat
// ask on the same pending consumes one clarification attempt. Comparison
// operators that arrived without their operand ride along on the pending.
func (s *Service) askMissingParameters(
	t *txn, kind spec.Kind, params spec.Spec, danglingOps map[string]string,
) {
	p := t.state.Pending
	if p.Type == suggestion.MissingParameters && p.SearchKind == kind {
		p.ClarificationAttempts++
		p.Parameters = params
		for target, op := range danglingOps {
			if p.ComparatorOps == nil {
				p.ComparatorOps = make(map[string]string)
			}
			p.ComparatorOps[target] = op
		}
	} else {
		p = suggestion.Pending{
			Type:             suggestion.MissingParameters,
			SearchKind:       kind,
			Intent:           t.in.Intent,
			RequiredCriteria: requiredCriteria[kind],
			Parameters:       params,
			ComparatorOps:    danglingOps,
			CreatedAt:        t.now,
			AwaitingResponse: true,
		}
		suggestionEvent(p.Type, eventCreated)
	}
	t.setPending(p)
	t.say("Especifica al menos: " + humanCriteria(requiredCriteria[kind]))
	t.setEngagement(turn.EngagementAwaitingParams)
	t.outcome = outcomeSuggestion
}

// executeSearch records the search in history and emits the execution
// directive for the downstream search collaborator.
func (s *Service) executeSearch(t *txn, kind spec.Kind, params spec.Spec, cmp domcmp.Result, action string) {
	if params.Kind() == "" {
		params = params.SetKind(kind)
	}

	status := turn.StatusCompleted
	outcome := outcomeSearch
	if action == searchActionModify {
		status = turn.StatusModified
		outcome = outcomeModification
	}
	t.appendHistory(turn.HistoryRecord{
		Timestamp:  t.now,
		Kind:       kind,
		Parameters: params,
		Status:     status,
	})
	t.setEngagement(turn.EngagementSatisfied)

	payload := map[string]any{
		"type":          "search_results",
		"search_type":   string(kind),
		"parameters":    params.Parameters(),
		"validated":     true,
		"search_action": action,
		"timestamp":     t.now.Format(time.RFC3339),
	}
	if cmp.Detected {
		payload["comparison_analysis"] = map[string]any{
			"comparison_type": string(cmp.Type),
			"operator":        string(cmp.Operator),
			"operand":         cmp.Operand,
			"confidence":      cmp.Confidence,
		}
		if cmp.Temporal != nil && !cmp.Temporal.IsZero() {
			dates := map[string]any{"period": cmp.Temporal.Period}
			if cmp.Temporal.From != "" {
				dates["date_from"] = cmp.Temporal.From
			}
			if cmp.Temporal.To != "" {
				dates["date_to"] = cmp.Temporal.To
			}
			payload["comparative_dates"] = dates
		}
	}

	t.sayPayload(searchMessage(kind, params), payload)
	t.outcome = outcome
}

func searchMessage(kind spec.Kind, params spec.Spec) string {
	noun := "productos"
	if kind == spec.KindOffer {
		noun = "ofertas"
	}
	if params.Len() == 0 {
		if kind == spec.KindOffer {
			return "Buscando todas las ofertas disponibles."
		}
		return "Buscando todos los productos disponibles."
	}
	parts := make([]string, 0, params.Len())
	for _, key := range params.Keys() {
		if v, ok := params.Get(key); ok {
			parts = append(parts, fmt.Sprintf("%s %s", readableName(key), v.Text()))
		}
	}
	return "Buscando " + noun + " con " + strings.Join(parts, ", ") + "."
}

func readableName(entityType string) string {
	if name, ok := readableNames[entityType]; ok {
		return name
	}
	return entityType
}

// humanCriteria joins criteria names with a final disjunction.
func humanCriteria(criteria []string) string {
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = readableName(c)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " o " + names[len(names)-1]
}

var negativePhrases = []string{"no sirve", "no funciona", "pesimo", "horrible", "inutil", "malo"}

var positivePhrases = []string{"gracias", "genial", "perfecto", "excelente", "buenisimo", "barbaro"}

func detectSentiment(text string) string {
	folded := vocabulary.Fold(text)
	for _, phrase := range negativePhrases {
		if strings.Contains(folded, phrase) {
			return "negative"
		}
	}
	for _, phrase := range positivePhrases {
		if strings.Contains(folded, phrase) {
			return "positive"
		}
	}
	return ""
}
