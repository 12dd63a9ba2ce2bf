package scoring

import "riskmatch/internal/domain"

// Multiplier returns the discount factor for an evidence tier. Unknown tiers
// are treated as self-declared.
func Multiplier(t domain.EvidenceTier) float64 {
	switch t {
	case domain.TierSystemGenerated:
		return 1.0
	case domain.TierPolicyDocument:
		return 0.8
	default:
		return 0.6
	}
}

// BestTier returns the strongest tier among the documents, or TIER_0 when
// there are none.
func BestTier(docs []domain.Document) domain.EvidenceTier {
	best := domain.TierSelfDeclared
	for _, d := range docs {
		if d.Tier.Valid() && Multiplier(d.Tier) > Multiplier(best) {
			best = d.Tier
		}
	}
	return best
}
