package matching

import (
	"math"
	"strings"

	"riskmatch/internal/scoring"
)

func (s *Scorer) boost(v vendorProfile, t target) PriorityBoost {
	b := PriorityBoost{
		VendorID:        v.ID,
		MissingFeatures: []string{},
	}

	for i, p := range t.ranked {
		if p == "" {
			continue
		}
		if _, ok := v.categories[p]; ok {
			b.TopPriorityBoost = scoring.Clamp(s.policy.RankBoost(i+1), 0, MaxTopPriorityBoost)
			b.MatchedPriority = t.priorities.RankedPriorities[i]
			b.MatchedRank = i + 1
			break
		}
	}

	if len(t.mustHave) > 0 {
		present := 0
		for _, f := range t.mustHave {
			if v.features.Has(f) {
				present++
			} else {
				b.MissingFeatures = append(b.MissingFeatures, f)
			}
		}
		b.FeatureBoost = int(math.Round(MaxFeatureBoost * float64(present) / float64(len(t.mustHave))))
	}

	if t.deployment != "" {
		for _, d := range v.deployments {
			if strings.Contains(d, t.deployment) {
				b.DeploymentBoost = MaxDeploymentBoost
				break
			}
		}
	}

	if v.ImplementationTimeline != nil && *v.ImplementationTimeline >= 0 {
		if days, ok := s.policy.SpeedThreshold(t.priorities.ImplementationUrgency); ok && *v.ImplementationTimeline <= days {
			b.SpeedBoost = MaxSpeedBoost
		}
	}

	b.TotalBoost = b.TopPriorityBoost + b.FeatureBoost + b.DeploymentBoost + b.SpeedBoost
	return b
}
