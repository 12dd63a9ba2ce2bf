package matching

import (
	"strings"

	"riskmatch/internal/domain"
	"riskmatch/internal/textnorm"
)

var globalKey = textnorm.Label(domain.GlobalRegion)

// vendorProfile is a vendor with its labels normalized for comparison.
type vendorProfile struct {
	domain.Vendor
	categories  textnorm.Set
	coverage    textnorm.Set
	global      bool
	features    textnorm.Set
	deployments []string
}

func prepare(v domain.Vendor) vendorProfile {
	pv := vendorProfile{
		Vendor:     v,
		categories: textnorm.NewSet(v.Categories),
		coverage:   textnorm.NewSet(v.GeographicCoverage),
		features:   textnorm.NewSet(v.Features),
	}
	_, pv.global = pv.coverage[globalKey]
	for _, d := range strings.Split(v.DeploymentOptions, ",") {
		if k := textnorm.Label(d); k != "" {
			pv.deployments = append(pv.deployments, k)
		}
	}
	return pv
}

// target is what vendors are scored against: the gaps of one assessment and
// the priorities stated for it.
type target struct {
	priorities    domain.Priorities
	gapKeys       []string
	jurisdictions []string
	ranked        []string
	mustHave      []string
	deployment    string
}

func newTarget(pr domain.Priorities, gaps []domain.Gap) target {
	t := target{
		priorities: pr,
		gapKeys:    make([]string, len(gaps)),
		ranked:     make([]string, len(pr.RankedPriorities)),
		deployment: textnorm.Label(pr.DeploymentPreference),
	}
	for i, g := range gaps {
		t.gapKeys[i] = textnorm.Label(g.Category)
	}
	for _, j := range pr.Jurisdictions {
		if k := textnorm.Label(j); k != "" {
			t.jurisdictions = append(t.jurisdictions, k)
		}
	}
	for i, p := range pr.RankedPriorities {
		t.ranked[i] = textnorm.Label(p)
	}
	for _, f := range pr.MustHaveFeatures {
		if strings.TrimSpace(f) != "" {
			t.mustHave = append(t.mustHave, f)
		}
	}
	return t
}
