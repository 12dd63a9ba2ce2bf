package matching

import (
	"fmt"
	"slices"
	"strings"

	"riskmatch/internal/domain"
)

// reasons lists, in component order, a short explanation for every
// component that scored.
func (s *Scorer) reasons(v vendorProfile, t target, base BaseScore, boost PriorityBoost) []string {
	out := []string{}
	if base.RiskAreaCoverage > 0 {
		out = append(out, fmt.Sprintf("Covers %d of %d identified gaps", base.CoveredGaps, base.TotalGaps))
	}
	if base.SizeFit > 0 {
		if servesExactly(v.TargetSegments, t.priorities.CompanySize) {
			out = append(out, fmt.Sprintf("Serves %s organizations", t.priorities.CompanySize))
		} else {
			out = append(out, "Serves an adjacent company size")
		}
	}
	if base.GeoCoverage > 0 {
		if v.global {
			out = append(out, "Operates globally")
		} else {
			out = append(out, fmt.Sprintf("Operates in %d of %d jurisdictions", base.CoveredRegions, base.TotalRegions))
		}
	}
	if base.PriceScore > 0 {
		if s.priceOverlaps(v.PricingRange, t.priorities.BudgetRange) {
			out = append(out, "Pricing fits budget")
		} else {
			out = append(out, "Pricing close to budget")
		}
	}
	if boost.TopPriorityBoost > 0 {
		out = append(out, fmt.Sprintf("Matches priority #%d: %s", boost.MatchedRank, boost.MatchedPriority))
	}
	if boost.FeatureBoost > 0 {
		total := len(t.mustHave)
		have := total - len(boost.MissingFeatures)
		if have == total {
			out = append(out, "Has all must-have features")
		} else {
			out = append(out, fmt.Sprintf("Has %d of %d must-have features", have, total))
		}
	}
	if boost.DeploymentBoost > 0 {
		out = append(out, fmt.Sprintf("Supports %s deployment", strings.TrimSpace(t.priorities.DeploymentPreference)))
	}
	if boost.SpeedBoost > 0 {
		out = append(out, fmt.Sprintf("Implementation in %d days", *v.ImplementationTimeline))
	}
	return out
}

func servesExactly(segments []domain.CompanySize, org domain.CompanySize) bool {
	return slices.Contains(segments, org)
}
