// Package comparison scans free turn text for comparison and temporal
// semantics.
package comparison

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
	"github.com/nuvet/searchdialog/internal/domain/entity"
)

// Confidence weights per family and the context bonuses.
const (
	weightNumeric  = 0.4
	weightPrice    = 0.3
	weightQuality  = 0.3
	weightQuantity = 0.3
	weightTemporal = 0.35
	weightSize     = 0.25

	bonusEntities = 0.2
	bonusGroups   = 0.1
	bonusRoles    = 0.1
)

type pattern struct {
	op domcmp.Operator
	re *regexp.Regexp
}

type family struct {
	typ      domcmp.Type
	weight   float64
	patterns []pattern
}

// Detector classifies turn text against six ordered comparison families.
// It never returns an error: any internal fault yields a "not detected"
// result.
type Detector struct {
	logger   *zap.Logger
	clock    Clock
	families []family
	groupRe  []*regexp.Regexp
	roles    map[string][]string
}

// New creates a Detector with all pattern families compiled.
func New(clock Clock, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		logger:   logger,
		clock:    clock,
		families: buildFamilies(),
		groupRe: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:grupo|familia|l[ií]nea)\s+(?:de\s+)?(\w+)`),
			regexp.MustCompile(`(?i)entre\s+(?:los|las)\s+(\w+)`),
		},
		roles: map[string][]string{
			"reference": {"comparado con", "versus", "vs", "frente a", "respecto a"},
			"target":    {"similar a", "tipo", "como el", "como la"},
			"group":     {"del grupo", "de la familia", "de la línea", "de la linea"},
		},
	}
}

// Detect scans text for comparison semantics. The first family that
// matches sets the type and operator; later families only add confidence
// weight.
func (d *Detector) Detect(text string, entities []entity.Normalized) (result domcmp.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("comparison detection panicked", zap.Any("panic", r))
			result = domcmp.Result{}
		}
	}()

	for _, f := range d.families {
		if f.typ == domcmp.TypeTemporal && !d.temporalApplies(text) {
			continue
		}
		op, operand, matched := matchFamily(f, text)
		if !matched {
			continue
		}
		result.Detected = true
		result.Confidence += f.weight
		if result.Type == "" {
			result.Type = f.typ
			result.Operator = op
			result.Operand = operand
		}
	}

	if !result.Detected {
		return result
	}

	if len(entities) > 0 {
		result.Confidence += bonusEntities
	}
	if result.Groups = d.detectGroups(text); len(result.Groups) > 0 {
		result.Confidence += bonusGroups
	}
	if result.Roles = d.detectRoles(text); len(result.Roles) > 0 {
		result.Confidence += bonusRoles
	}
	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}

	if result.Type == domcmp.TypeTemporal {
		if dr := d.resolveTemporal(text); !dr.IsZero() {
			result.Temporal = &dr
		}
	}

	d.logger.Debug("comparison detected",
		zap.String("type", string(result.Type)),
		zap.String("operator", string(result.Operator)),
		zap.Float64("confidence", result.Confidence),
	)
	return result
}

func matchFamily(f family, text string) (domcmp.Operator, string, bool) {
	for _, p := range f.patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		operand := ""
		if len(m) > 1 {
			operand = m[1]
		}
		return p.op, operand, true
	}
	return "", "", false
}

// temporalApplies guards the temporal family: the text must contain a
// temporal keyword and no percentage (so "15%" is never read as a month).
func (d *Detector) temporalApplies(text string) bool {
	if percentRe.MatchString(text) {
		return false
	}
	return temporalKeywordRe.MatchString(text)
}

func (d *Detector) detectGroups(text string) []string {
	var groups []string
	for _, re := range d.groupRe {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && !contains(groups, m[1]) {
				groups = append(groups, m[1])
			}
		}
	}
	return groups
}

func (d *Detector) detectRoles(text string) []string {
	var detected []string
	lower := strings.ToLower(text)
	for _, role := range []string{"reference", "target", "group"} {
		for _, ind := range d.roles[role] {
			if strings.Contains(lower, ind) {
				detected = append(detected, role)
				break
			}
		}
	}
	return detected
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
