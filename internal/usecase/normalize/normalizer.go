// Package normalize collapses compound entity tags from the NLU collaborator
// into canonical (type, value, role, group) tuples.
package normalize

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/domain/entity"
)

// operatorRoles maps comparator keywords embedded in entity tags to the
// canonical operator role.
var operatorRoles = map[string]string{
	"mas":      "gt",
	"mayor":    "gt",
	"menos":    "lt",
	"menor":    "lt",
	"igual":    "eq",
	"distinto": "neq",
}

// filterGroups maps context suffixes to the filter group they build.
var filterGroups = map[string]string{
	"descuento":    "descuento_filter",
	"precio":       "precio_filter",
	"stock":        "stock_filter",
	"bonificacion": "bonificacion_filter",
}

// dosageSubtypes are the known dosage sub-entity tags.
var dosageSubtypes = map[string]struct{}{
	"gramaje":  {},
	"volumen":  {},
	"forma":    {},
	"cantidad": {},
}

// Normalizer rewrites compound entity tags. Malformed tags pass through
// unchanged; entities are never dropped.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a Normalizer.
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize converts raw entities to their canonical form. The output
// always has the same length as the input; a count mismatch is logged as
// a warning because it means entities were lost upstream.
func (n *Normalizer) Normalize(raw []entity.Raw) []entity.Normalized {
	out := make([]entity.Normalized, 0, len(raw))
	for _, r := range raw {
		out = append(out, n.normalizeOne(r))
	}

	if len(out) != len(raw) {
		n.logger.Warn("entity count changed during normalization",
			zap.Int("input", len(raw)),
			zap.Int("output", len(out)),
		)
	}
	return out
}

func (n *Normalizer) normalizeOne(r entity.Raw) entity.Normalized {
	passthrough := entity.Normalized{
		Type:       r.Entity,
		Value:      r.Value,
		Role:       r.Role,
		Group:      r.Group,
		Confidence: r.Confidence,
	}

	parts := splitTag(r.Entity)
	if len(parts) < 2 || len(parts) > 3 {
		return passthrough
	}

	switch parts[0] {
	case "comparador":
		return n.normalizeComparator(r, parts, passthrough)
	case "estado":
		return entity.Normalized{
			Type:       "estado",
			Value:      r.Value,
			Role:       strings.Join(parts[1:], "_"),
			Group:      r.Group,
			Confidence: r.Confidence,
		}
	case "dosis":
		if _, ok := dosageSubtypes[parts[1]]; !ok || len(parts) != 2 {
			return passthrough
		}
		return entity.Normalized{
			Type:       "dosis",
			Value:      r.Value,
			Role:       parts[1],
			Group:      r.Group,
			Confidence: r.Confidence,
		}
	}
	return passthrough
}

func (n *Normalizer) normalizeComparator(
	r entity.Raw, parts []string, passthrough entity.Normalized,
) entity.Normalized {
	role, ok := operatorRoles[parts[1]]
	if !ok {
		n.logger.Debug("unknown comparator operator, passing entity through",
			zap.String("entity", r.Entity))
		return passthrough
	}

	group := r.Group
	if len(parts) == 3 {
		g, ok := filterGroups[parts[2]]
		if !ok {
			return passthrough
		}
		group = g
	}

	return entity.Normalized{
		Type:       "comparador",
		Value:      r.Value,
		Role:       role,
		Group:      group,
		Confidence: r.Confidence,
	}
}

func splitTag(tag string) []string {
	return strings.FieldsFunc(tag, func(r rune) bool {
		return r == '_' || r == '-'
	})
}
