package matching

import (
	"math"

	"riskmatch/internal/domain"
	"riskmatch/internal/scoring"
)

func (s *Scorer) base(v vendorProfile, t target) BaseScore {
	b := BaseScore{
		VendorID:   v.ID,
		VendorName: v.Name,
		TotalGaps:  len(t.gapKeys),
	}

	for _, k := range t.gapKeys {
		if _, ok := v.categories[k]; ok {
			b.CoveredGaps++
		}
	}
	b.RiskAreaCoverage = s.proportional(MaxRiskAreaCoverage, b.CoveredGaps, b.TotalGaps)

	b.SizeFit = s.sizeFit(v.TargetSegments, t.priorities.CompanySize)

	b.TotalRegions = len(t.jurisdictions)
	for _, j := range t.jurisdictions {
		if _, ok := v.coverage[j]; ok || v.global {
			b.CoveredRegions++
		}
	}
	b.GeoCoverage = s.proportional(MaxGeoCoverage, b.CoveredRegions, b.TotalRegions)

	b.PriceScore = s.priceScore(v.PricingRange, t.priorities.BudgetRange)

	b.TotalBase = b.RiskAreaCoverage + b.SizeFit + b.GeoCoverage + b.PriceScore
	return b
}

// proportional scales covered/total to max, rounded to the policy's coverage
// step. An empty total scores 0.
func (s *Scorer) proportional(max, covered, total int) int {
	if total == 0 || covered <= 0 {
		return 0
	}
	step := float64(s.policy.CoverageStep)
	if step < 1 {
		step = 1
	}
	v := float64(max) * float64(covered) / float64(total)
	return scoring.Clamp(int(math.Round(v/step)*step), 0, max)
}

func (s *Scorer) sizeFit(segments []domain.CompanySize, org domain.CompanySize) int {
	r := org.Rank()
	if r < 0 {
		return 0
	}
	best := 0
	for _, seg := range segments {
		sr := seg.Rank()
		switch {
		case sr < 0:
			continue
		case sr == r:
			return scoring.Clamp(s.policy.SizeFit.Exact, 0, MaxSizeFit)
		case sr == r-1 || sr == r+1:
			best = s.policy.SizeFit.Adjacent
		}
	}
	return scoring.Clamp(best, 0, MaxSizeFit)
}

// priceScore gives full credit when the vendor's range overlaps the budget
// range (shared boundaries included) and partial credit when exactly one
// band lies between them.
func (s *Scorer) priceScore(vendor, budget domain.PricingBand) int {
	vb, vi, ok := s.policy.Band(vendor)
	if !ok {
		return 0
	}
	bb, bi, ok := s.policy.Band(budget)
	if !ok {
		return 0
	}
	if vb.Touches(bb) {
		return scoring.Clamp(s.policy.Price.Full, 0, MaxPriceScore)
	}
	if vi-bi == 2 || bi-vi == 2 {
		return scoring.Clamp(s.policy.Price.Partial, 0, MaxPriceScore)
	}
	return 0
}

func (s *Scorer) priceOverlaps(vendor, budget domain.PricingBand) bool {
	vb, _, ok := s.policy.Band(vendor)
	if !ok {
		return false
	}
	bb, _, ok := s.policy.Band(budget)
	return ok && vb.Touches(bb)
}
