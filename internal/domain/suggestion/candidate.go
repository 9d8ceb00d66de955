package suggestion

// Tier buckets a similarity score into a coarse confidence level.
type Tier string

// Confidence tiers. Scores below the low threshold are excluded upstream.
const (
	TierVeryHigh Tier = "very_high"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
	TierVeryLow  Tier = "very_low"
)

// Score thresholds for the tiers.
const (
	veryHighThreshold = 0.9
	highThreshold     = 0.8
	mediumThreshold   = 0.7
	lowThreshold      = 0.6
)

// TierFor maps a similarity score to its confidence tier.
func TierFor(score float64) Tier {
	switch {
	case score >= veryHighThreshold:
		return TierVeryHigh
	case score >= highThreshold:
		return TierHigh
	case score >= mediumThreshold:
		return TierMedium
	case score >= lowThreshold:
		return TierLow
	default:
		return TierVeryLow
	}
}

// MinScore is the cutoff below which candidates are excluded.
const MinScore = lowThreshold

// Candidate is one ranked correction for an invalid value. Computed on
// demand, never persisted.
type Candidate struct {
	Suggestion string
	Score      float64
	Tier       Tier
	EntityType string
}
