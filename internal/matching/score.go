// Package matching scores vendors against an assessment's gaps and the
// organization's stated priorities.
package matching

import (
	"riskmatch/internal/domain"
	"riskmatch/internal/policy"
	"riskmatch/internal/scoring"
)

// Component maxima.
const (
	MaxRiskAreaCoverage = 40
	MaxSizeFit          = 20
	MaxGeoCoverage      = 20
	MaxPriceScore       = 20
	MaxTotalBase        = 100

	MaxTopPriorityBoost = 20
	MaxFeatureBoost     = 10
	MaxDeploymentBoost  = 5
	MaxSpeedBoost       = 5
	MaxTotalBoost       = 40

	MaxTotalScore = 140
)

type BaseScore struct {
	VendorID         string `json:"vendorId"`
	VendorName       string `json:"vendorName"`
	RiskAreaCoverage int    `json:"riskAreaCoverage"`
	SizeFit          int    `json:"sizeFit"`
	GeoCoverage      int    `json:"geoCoverage"`
	PriceScore       int    `json:"priceScore"`
	TotalBase        int    `json:"totalBase"`
	CoveredGaps      int    `json:"coveredGaps"`
	TotalGaps        int    `json:"totalGaps"`
	CoveredRegions   int    `json:"coveredJurisdictions"`
	TotalRegions     int    `json:"totalJurisdictions"`
}

type PriorityBoost struct {
	VendorID         string   `json:"vendorId"`
	TopPriorityBoost int      `json:"topPriorityBoost"`
	FeatureBoost     int      `json:"featureBoost"`
	DeploymentBoost  int      `json:"deploymentBoost"`
	SpeedBoost       int      `json:"speedBoost"`
	TotalBoost       int      `json:"totalBoost"`
	MatchedPriority  string   `json:"matchedPriority,omitempty"`
	MatchedRank      int      `json:"matchedRank,omitempty"`
	MissingFeatures  []string `json:"missingFeatures"`
}

type VendorMatchScore struct {
	VendorID     string        `json:"vendorId"`
	VendorName   string        `json:"vendorName"`
	Base         BaseScore     `json:"baseScore"`
	Boost        PriorityBoost `json:"priorityBoost"`
	TotalScore   int           `json:"totalScore"`
	MatchReasons []string      `json:"matchReasons"`
}

// CombineScores bounds the sum of a base total and a boost total to
// [0, MaxTotalScore].
func CombineScores(totalBase, totalBoost int) int {
	return scoring.Clamp(totalBase+totalBoost, 0, MaxTotalScore)
}

func Combine(base BaseScore, boost PriorityBoost) int {
	return CombineScores(base.TotalBase, boost.TotalBoost)
}

// Scorer applies a matching policy. It holds no per-call state and is safe
// for concurrent use.
type Scorer struct {
	policy *policy.Policy
}

// NewScorer returns a scorer for p, or for the default policy when p is nil.
func NewScorer(p *policy.Policy) *Scorer {
	if p == nil {
		p = policy.Default()
	}
	return &Scorer{policy: p}
}

func (s *Scorer) Policy() *policy.Policy { return s.policy }

// ScoreVendorBase computes the four fit components of one vendor.
func (s *Scorer) ScoreVendorBase(v domain.Vendor, pr domain.Priorities, gaps []domain.Gap) BaseScore {
	return s.base(prepare(v), newTarget(pr, gaps))
}

// ScoreVendorBoost computes the four priority boost components of one vendor.
func (s *Scorer) ScoreVendorBoost(v domain.Vendor, pr domain.Priorities) PriorityBoost {
	return s.boost(prepare(v), newTarget(pr, nil))
}

// ScoreAll computes base scores for every vendor, in input order. Gap and
// jurisdiction labels are normalized once for the whole batch.
func (s *Scorer) ScoreAll(vendors []domain.Vendor, pr domain.Priorities, gaps []domain.Gap) []BaseScore {
	t := newTarget(pr, gaps)
	out := make([]BaseScore, len(vendors))
	for i, v := range vendors {
		out[i] = s.base(prepare(v), t)
	}
	return out
}

// MatchAll runs the full pipeline for every vendor and returns the matches
// ranked by total score.
func (s *Scorer) MatchAll(vendors []domain.Vendor, pr domain.Priorities, gaps []domain.Gap) []VendorMatchScore {
	t := newTarget(pr, gaps)
	out := make([]VendorMatchScore, len(vendors))
	for i, v := range vendors {
		pv := prepare(v)
		base := s.base(pv, t)
		boost := s.boost(pv, t)
		out[i] = VendorMatchScore{
			VendorID:     v.ID,
			VendorName:   v.Name,
			Base:         base,
			Boost:        boost,
			TotalScore:   Combine(base, boost),
			MatchReasons: s.reasons(pv, t, base, boost),
		}
	}
	SortMatches(out)
	return out
}
