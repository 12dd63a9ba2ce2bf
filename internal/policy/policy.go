// Package policy holds the business constants of vendor matching: rank
// boosts, size and price credit, and speed thresholds per urgency.
package policy

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"riskmatch/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

//go:embed policy.cue
var schemaCUE []byte

type Policy struct {
	RankBoosts      []int                                `yaml:"rank_boosts" json:"rankBoosts"`
	SizeFit         SizeFit                              `yaml:"size_fit" json:"sizeFit"`
	Price           Price                                `yaml:"price" json:"price"`
	SpeedThresholds map[domain.ImplementationUrgency]int `yaml:"speed_thresholds" json:"speedThresholds"`
	CoverageStep    int                                  `yaml:"coverage_step" json:"coverageStep"`
}

type SizeFit struct {
	Exact    int `yaml:"exact" json:"exact"`
	Adjacent int `yaml:"adjacent" json:"adjacent"`
}

type Price struct {
	Full    int    `yaml:"full" json:"full"`
	Partial int    `yaml:"partial" json:"partial"`
	Bands   []Band `yaml:"bands" json:"bands"`
}

// Band is a price range in the currency's base unit. A nil Max is unbounded.
type Band struct {
	Name domain.PricingBand `yaml:"name" json:"name"`
	Min  int                `yaml:"min" json:"min"`
	Max  *int               `yaml:"max,omitempty" json:"max,omitempty"`
}

func (b Band) upper() float64 {
	if b.Max == nil {
		return math.Inf(1)
	}
	return float64(*b.Max)
}

// Touches reports whether the two ranges overlap, boundaries included.
func (b Band) Touches(o Band) bool {
	return float64(b.Min) <= o.upper() && float64(o.Min) <= b.upper()
}

// Default returns the embedded policy.
func Default() *Policy {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a policy file. An empty path yields the embedded default.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy.Load: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy.Load %s: %w", path, err)
	}
	return p, nil
}

// Parse validates data against the embedded schema and decodes it. Schema
// violations wrap domain.ErrInvalidConfiguration.
func Parse(data []byte) (*Policy, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.validateBands(); err != nil {
		return nil, err
	}
	return &p, nil
}

func validateSchema(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaCUE, cue.Filename("policy.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile policy schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Policy"))

	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	unified := def.Unify(data)
	if err := unified.Err(); err != nil {
		return fmt.Errorf("policy schema: %v: %w", err, domain.ErrInvalidConfiguration)
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("policy schema: %v: %w", err, domain.ErrInvalidConfiguration)
	}
	return nil
}

// validateBands checks that band names are unique and that neighbouring
// ranges share a boundary, so that only the last band may be unbounded.
func (p *Policy) validateBands() error {
	seen := make(map[domain.PricingBand]bool, len(p.Price.Bands))
	for i, b := range p.Price.Bands {
		if seen[b.Name] {
			return fmt.Errorf("price band %s declared twice: %w", b.Name, domain.ErrInvalidConfiguration)
		}
		seen[b.Name] = true
		if i == 0 {
			continue
		}
		prev := p.Price.Bands[i-1]
		if prev.Max == nil || *prev.Max != b.Min {
			return fmt.Errorf("price band %s must start where %s ends: %w", b.Name, prev.Name, domain.ErrInvalidConfiguration)
		}
	}
	return nil
}

// Band returns the band with the given name and its position on the scale.
func (p *Policy) Band(name domain.PricingBand) (Band, int, bool) {
	for i, b := range p.Price.Bands {
		if b.Name == name {
			return b, i, true
		}
	}
	return Band{}, -1, false
}

// SpeedThreshold returns the longest implementation timeline, in days, that
// still earns the speed boost for the urgency.
func (p *Policy) SpeedThreshold(u domain.ImplementationUrgency) (int, bool) {
	d, ok := p.SpeedThresholds[u]
	return d, ok
}

// RankBoost returns the boost for a 1-based priority rank.
func (p *Policy) RankBoost(rank int) int {
	if rank < 1 || rank > len(p.RankBoosts) {
		return 0
	}
	return p.RankBoosts[rank-1]
}

// YAML renders the policy in its file format.
func (p *Policy) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}
