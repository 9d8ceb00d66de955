// Package modification classifies a turn as adding, removing or replacing
// filters relative to the prior search specification.
package modification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/domain/entity"
	dommod "github.com/nuvet/searchdialog/internal/domain/modification"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/turn"
)

// SubIntent narrows what kind of modification the turn asks for.
type SubIntent string

// Modification sub-intents.
const (
	SubRemove   SubIntent = "remove"
	SubAdd      SubIntent = "add"
	SubReplace  SubIntent = "replace"
	SubMultiple SubIntent = "multiple"
)

// SubIntentFor maps a modification intent label to its sub-intent.
func SubIntentFor(intent string) SubIntent {
	switch intent {
	case "quitar_filtro":
		return SubRemove
	case "agregar_filtro":
		return SubAdd
	case "modificar_multiple":
		return SubMultiple
	default:
		return SubReplace
	}
}

// Confidence thresholds for the ambiguity check.
const (
	confidenceHigh = 0.85 // at or above: experts skip confirmation
	confidenceLow  = 0.65 // below: always confirm

	maxActionsWithoutConfirmation = 3
)

// Action confidences by how directly the signal named the change.
const (
	confRoleDriven = 0.9
	confDirect     = 0.85
	confInferred   = 0.7
)

// validEntities lists the entity types each search kind accepts.
var validEntities = map[spec.Kind][]string{
	spec.KindProduct: {
		"producto", "empresa", "categoria", "animal",
		"sintoma", "dosis", "cantidad", "ingrediente_activo",
	},
	spec.KindOffer: {
		"producto", "empresa", "categoria", "animal",
		"estado", "descuento", "bonificacion", "stock",
		"precio", "fecha", "tiempo",
	},
}

var conjunctionRe = regexp.MustCompile(`(?i)\s+y\s+|\s+e\s+|,\s*y\s+|\s+pero\s+|\s+adem[aá]s\s+|,\s+(?:saca|quita|elimina|agrega|a[ñn]ade)`)

// Detector derives modification actions from role-tagged entities.
type Detector struct {
	logger *zap.Logger
}

// New creates a Detector.
func New(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// Detect derives the actions a modification turn implies and decides
// whether the user must confirm before they are applied. The detector
// does not mutate the specification; Apply does that once confirmed.
func (d *Detector) Detect(
	sub SubIntent,
	text string,
	entities []entity.Normalized,
	current spec.Spec,
	experience string,
) dommod.Result {
	var actions []dommod.Action
	switch sub {
	case SubRemove:
		actions = deriveRemovals(entities)
	case SubAdd:
		actions = deriveAdditions(entities)
	default:
		actions = deriveReplacements(entities, current)
	}

	result := dommod.Result{
		Detected:   len(actions) > 0,
		Confidence: meanConfidence(actions),
	}
	if !result.Detected {
		return result
	}

	valid, invalid, reports := d.validate(actions, current.Kind())
	result.Actions = valid
	result.InvalidActions = invalid
	result.InvalidEntities = reports

	d.checkAmbiguity(&result, text, experience)

	d.logger.Debug("modification detected",
		zap.Int("actions", len(result.Actions)),
		zap.Int("invalid", len(result.InvalidActions)),
		zap.Bool("needs_confirmation", result.NeedsConfirmation),
		zap.Float64("confidence", result.Confidence),
	)
	return result
}

// ValidKindsFor returns the search kinds that accept the entity type.
func ValidKindsFor(entityType string) []spec.Kind {
	var kinds []spec.Kind
	for _, kind := range []spec.Kind{spec.KindProduct, spec.KindOffer} {
		for _, e := range validEntities[kind] {
			if e == entityType {
				kinds = append(kinds, kind)
				break
			}
		}
	}
	return kinds
}

func deriveRemovals(entities []entity.Normalized) []dommod.Action {
	var actions []dommod.Action
	for _, e := range entities {
		if e.IsComparator() {
			continue
		}
		if e.Type == "filtro" {
			// the value names the filter to drop entirely
			actions = append(actions, dommod.Action{
				Type:       dommod.RemoveFilter,
				EntityType: strings.ToLower(strings.TrimSpace(e.Value)),
				Confidence: confRoleDriven,
			})
			continue
		}
		actions = append(actions, dommod.Action{
			Type:       dommod.RemoveFilter,
			EntityType: e.Type,
			OldValue:   e.Value,
			Confidence: confDirect,
		})
	}
	return actions
}

func deriveAdditions(entities []entity.Normalized) []dommod.Action {
	var actions []dommod.Action
	for _, e := range entities {
		if e.IsComparator() {
			continue
		}
		conf := confDirect
		if e.Role == "add" {
			conf = confRoleDriven
		}
		actions = append(actions, dommod.Action{
			Type:       dommod.AddFilter,
			EntityType: e.Type,
			NewValue:   e.Value,
			Confidence: conf,
		})
	}
	return actions
}

// deriveReplacements pairs same-type entities with old/new roles into
// replace actions; add/remove roles become their action directly; an
// unroled entity replaces the current value of its type when one exists.
func deriveReplacements(entities []entity.Normalized, current spec.Spec) []dommod.Action {
	byType := make(map[string][]entity.Normalized)
	var order []string
	for _, e := range entities {
		if e.IsComparator() {
			continue
		}
		if _, seen := byType[e.Type]; !seen {
			order = append(order, e.Type)
		}
		byType[e.Type] = append(byType[e.Type], e)
	}

	var actions []dommod.Action
	for _, entityType := range order {
		group := byType[entityType]

		var oldVal, newVal string
		var rest []entity.Normalized
		for _, e := range group {
			switch e.Role {
			case "old":
				oldVal = e.Value
			case "new":
				newVal = e.Value
			case "add":
				actions = append(actions, dommod.Action{
					Type: dommod.AddFilter, EntityType: entityType,
					NewValue: e.Value, Confidence: confRoleDriven,
				})
			case "remove":
				actions = append(actions, dommod.Action{
					Type: dommod.RemoveFilter, EntityType: entityType,
					OldValue: e.Value, Confidence: confRoleDriven,
				})
			default:
				rest = append(rest, e)
			}
		}

		if oldVal != "" && newVal != "" {
			actions = append(actions, dommod.Action{
				Type: dommod.Replace, EntityType: entityType,
				OldValue: oldVal, NewValue: newVal, Confidence: confRoleDriven,
			})
			continue
		}

		for _, e := range rest {
			if cur, ok := current.Get(entityType); ok {
				actions = append(actions, dommod.Action{
					Type: dommod.Replace, EntityType: entityType,
					OldValue: cur.Text(), NewValue: e.Value, Confidence: confInferred,
				})
			} else {
				actions = append(actions, dommod.Action{
					Type: dommod.AddFilter, EntityType: entityType,
					NewValue: e.Value, Confidence: confInferred,
				})
			}
		}
	}
	return actions
}

func (d *Detector) validate(
	actions []dommod.Action, kind spec.Kind,
) (valid, invalid []dommod.Action, reports []dommod.InvalidEntity) {
	allowed := make(map[string]struct{}, len(validEntities[kind]))
	for _, e := range validEntities[kind] {
		allowed[e] = struct{}{}
	}

	for _, a := range actions {
		if err := a.Validate(); err != nil {
			d.logger.Warn("dropping malformed action", zap.Error(err))
			continue
		}
		if _, ok := allowed[a.EntityType]; ok {
			valid = append(valid, a)
			continue
		}
		invalid = append(invalid, a)
		value := a.NewValue
		if value == "" {
			value = a.OldValue
		}
		reports = append(reports, dommod.InvalidEntity{
			EntityType: a.EntityType,
			Value:      value,
			ValidIn:    ValidKindsFor(a.EntityType),
		})
	}
	return valid, invalid, reports
}

// checkAmbiguity decides whether the change needs user confirmation
// before it is applied.
func (d *Detector) checkAmbiguity(result *dommod.Result, text, experience string) {
	actions := result.Actions

	if result.Confidence < confidenceLow {
		confirm(result, "low_confidence",
			"No estoy seguro de haber entendido la modificación. ¿Podés confirmarla?")
		return
	}

	if experience == turn.ExperienceExpert && result.Confidence >= confidenceHigh &&
		len(result.InvalidActions) == 0 {
		return
	}

	if len(result.InvalidActions) > 0 {
		var names []string
		for _, r := range result.InvalidEntities {
			names = append(names, r.EntityType)
		}
		confirm(result, "invalid_entities",
			fmt.Sprintf("Algunos criterios no aplican a esta búsqueda: %s. ¿Querés cambiar el tipo de búsqueda?",
				strings.Join(names, ", ")))
		return
	}

	hasConjunction := conjunctionRe.MatchString(text)
	if hasConjunction && len(actions) == 1 {
		confirm(result, "conjunction_mismatch",
			"Mencionaste varios cambios pero solo detecté uno:\n"+actionList(actions)+"\n¿Es correcto?")
		return
	}
	if !hasConjunction && len(actions) > 1 {
		confirm(result, "multiple_without_conjunction",
			"Detecté varios cambios:\n"+actionList(actions)+"\n¿Los aplico todos?")
		return
	}

	if len(actions) > maxActionsWithoutConfirmation {
		confirm(result, "too_many_entities",
			"Son varios cambios a la vez:\n"+actionList(actions)+"\n¿Confirmás que los aplique?")
		return
	}

	if duplicateReplaceType(actions) != "" {
		confirm(result, "duplicate_replace",
			"Detecté más de un reemplazo para el mismo criterio. ¿Cuál querés conservar?")
		return
	}

	if experience != turn.ExperienceExpert && result.Confidence < confidenceHigh {
		confirm(result, "medium_confidence",
			"¿Querés hacer esto?\n"+actionList(actions))
	}
}

func confirm(result *dommod.Result, reason, message string) {
	result.NeedsConfirmation = true
	result.ConfirmationReason = reason
	result.ConfirmationMessage = message
}

func duplicateReplaceType(actions []dommod.Action) string {
	seen := make(map[string]int)
	for _, a := range actions {
		if a.Type == dommod.Replace {
			seen[a.EntityType]++
		}
	}
	types := make([]string, 0, len(seen))
	for t, n := range seen {
		if n > 1 {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

func actionList(actions []dommod.Action) string {
	lines := make([]string, len(actions))
	for i, a := range actions {
		lines[i] = fmt.Sprintf("  %d. %s", i+1, actionText(a))
	}
	return strings.Join(lines, "\n")
}

func actionText(a dommod.Action) string {
	switch a.Type {
	case dommod.Replace:
		return fmt.Sprintf("cambiar %s de %q a %q", a.EntityType, a.OldValue, a.NewValue)
	case dommod.AddFilter:
		return fmt.Sprintf("agregar %s %q", a.EntityType, a.NewValue)
	case dommod.RemoveFilter:
		if a.OldValue == "" {
			return fmt.Sprintf("quitar el filtro %s", a.EntityType)
		}
		return fmt.Sprintf("quitar %s %q", a.EntityType, a.OldValue)
	}
	return string(a.Type)
}

func meanConfidence(actions []dommod.Action) float64 {
	if len(actions) == 0 {
		return 0
	}
	var sum float64
	for _, a := range actions {
		sum += a.Confidence
	}
	return sum / float64(len(actions))
}
