// Package similarity scores invalid values against known vocabularies and
// returns ranked correction candidates.
package similarity

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/domain/suggestion"
	"github.com/nuvet/searchdialog/internal/vocabulary"
)

// Algorithm weights. The final score is the weighted average over the
// algorithms that produced a non-zero signal.
const (
	weightExact        = 1.0
	weightCaseFold     = 0.95
	weightSequence     = 0.7
	weightContainment  = 0.6
	weightLevenshtein  = 0.8
	weightPhonetic     = 0.5
	weightAbbreviation = 0.9

	doseUnitBonus  = 0.05
	prefixBoost    = 0.05
	prefixLen      = 3
	dedupCutoff    = 0.95
	defaultCacheSz = 512
)

// Vocabulary is the read-only lookup table provider.
type Vocabulary interface {
	Values(entityType string) []string
}

// Engine computes correction candidates. It is a pure function of
// (value, entityType, vocabulary, max); results are memoized in an LRU.
type Engine struct {
	vocab  Vocabulary
	cache  *lru.Cache[string, []suggestion.Candidate]
	logger *zap.Logger
}

// NewEngine creates an Engine with a bounded result cache.
func NewEngine(vocab Vocabulary, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[string, []suggestion.Candidate](defaultCacheSz)
	return &Engine{vocab: vocab, cache: cache, logger: logger}
}

// Suggest returns up to max correction candidates for an invalid value,
// best first. Candidates below the low-confidence cutoff are excluded.
// An unknown entity type degrades to no suggestions.
func (e *Engine) Suggest(entityType, value string, max int) []suggestion.Candidate {
	if max <= 0 || value == "" {
		return nil
	}

	key := fmt.Sprintf("%s|%s|%d", entityType, vocabulary.Fold(value), max)
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}

	candidates := e.rank(entityType, value, max)
	e.cache.Add(key, candidates)
	return candidates
}

func (e *Engine) rank(entityType, value string, max int) []suggestion.Candidate {
	vocabValues := e.vocab.Values(entityType)
	if len(vocabValues) == 0 {
		e.logger.Debug("no vocabulary for entity type", zap.String("entity_type", entityType))
		return nil
	}

	folded := vocabulary.Fold(value)

	type scored struct {
		canonical string
		folded    string
		score     float64
	}
	results := make([]scored, 0, len(vocabValues))
	for _, candidate := range vocabValues {
		fc := vocabulary.Fold(candidate)
		s := score(value, folded, candidate, fc, entityType)
		if s <= 0 {
			continue
		}
		if len(folded) >= prefixLen && strings.HasPrefix(fc, folded[:prefixLen]) {
			s += prefixBoost
		}
		if s > 1.0 {
			s = 1.0
		}
		if s < suggestion.MinScore {
			continue
		}
		results = append(results, scored{canonical: candidate, folded: fc, score: s})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].canonical < results[j].canonical
	})

	// Collapse near-duplicate candidates, keeping the better-scored one.
	deduped := results[:0]
	for _, r := range results {
		dup := false
		for _, kept := range deduped {
			if levenshteinSimilarity(r.folded, kept.folded) > dedupCutoff {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, r)
		}
	}

	if len(deduped) > max {
		deduped = deduped[:max]
	}

	out := make([]suggestion.Candidate, len(deduped))
	for i, r := range deduped {
		out[i] = suggestion.Candidate{
			Suggestion: r.canonical,
			Score:      r.score,
			Tier:       suggestion.TierFor(r.score),
			EntityType: entityType,
		}
	}
	return out
}

// score combines the algorithm signals into a weighted average.
func score(raw, folded, candidate, foldedCandidate, entityType string) float64 {
	type signal struct {
		value  float64
		weight float64
	}
	var signals []signal
	add := func(v, w float64) {
		if v > 0 {
			signals = append(signals, signal{v, w})
		}
	}

	if raw == candidate {
		add(1.0, weightExact)
	}
	if folded == foldedCandidate {
		add(1.0, weightCaseFold)
	}
	add(sequenceRatio(folded, foldedCandidate), weightSequence)
	add(containment(folded, foldedCandidate), weightContainment)
	add(levenshteinSimilarity(folded, foldedCandidate), weightLevenshtein)
	if phoneticCode(folded) == phoneticCode(foldedCandidate) {
		add(1.0, weightPhonetic)
	}
	if expansion, ok := abbreviations[folded]; ok && strings.HasPrefix(foldedCandidate, expansion) {
		add(1.0, weightAbbreviation)
	}

	if len(signals) == 0 {
		return 0
	}

	var sum, weights float64
	for _, s := range signals {
		sum += s.value * s.weight
		weights += s.weight
	}
	total := sum / weights

	if entityType == "dosis" && hasDoseUnit(folded) && hasDoseUnit(foldedCandidate) {
		total += doseUnitBonus
	}
	return total
}

func hasDoseUnit(s string) bool {
	for _, u := range doseUnits {
		if strings.Contains(s, u) {
			return true
		}
	}
	return false
}
