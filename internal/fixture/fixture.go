// Package fixture loads self-contained scoring scenarios from YAML: one
// template, one assessment with its answers and gaps, the vendor directory
// and the stated priorities.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"riskmatch/internal/adapters/memory"
	"riskmatch/internal/domain"
	"riskmatch/internal/scoring"
	"riskmatch/internal/textnorm"
)

// DefaultPattern matches fixture files anywhere below a directory.
const DefaultPattern = "**/*.{yaml,yml}"

type Fixture struct {
	Path       string             `yaml:"-"`
	Template   domain.Template    `yaml:"template"`
	Assessment domain.Assessment  `yaml:"assessment"`
	Answers    []domain.Answer    `yaml:"answers"`
	Gaps       []domain.Gap       `yaml:"gaps"`
	Vendors    []domain.Vendor    `yaml:"vendors"`
	Priorities *domain.Priorities `yaml:"priorities"`

	// Duplicates lists vendors dropped because an earlier vendor has the
	// same registrable website domain.
	Duplicates []string `yaml:"-"`
}

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture.Load: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture.Load %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes a fixture, rejecting unknown keys, and fills in the ids the
// file leaves implicit.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) normalize() error {
	if f.Template.ID == "" {
		return errors.New("template.id is required")
	}
	if f.Assessment.ID == "" {
		return errors.New("assessment.id is required")
	}
	switch f.Assessment.TemplateID {
	case "":
		f.Assessment.TemplateID = f.Template.ID
	case f.Template.ID:
	default:
		return fmt.Errorf("assessment %s references template %s, fixture defines %s", f.Assessment.ID, f.Assessment.TemplateID, f.Template.ID)
	}

	for i := range f.Template.Sections {
		s := &f.Template.Sections[i]
		s.TemplateID = f.Template.ID
		for j := range s.Questions {
			s.Questions[j].SectionID = s.ID
		}
	}

	for i := range f.Answers {
		a := &f.Answers[i]
		if a.QuestionID == "" {
			return fmt.Errorf("answers[%d]: question_id is required", i)
		}
		if a.ID == "" {
			a.ID = fmt.Sprintf("%s-%s", f.Assessment.ID, a.QuestionID)
		}
		if a.AssessmentID == "" {
			a.AssessmentID = f.Assessment.ID
		}
		if a.RawQualityScore != nil && !scoring.ValidRawScore(*a.RawQualityScore) {
			return fmt.Errorf("answer %s: raw_quality_score %v outside [0, %v]", a.ID, *a.RawQualityScore, scoring.MaxRawScore)
		}
		for _, d := range a.Documents {
			if !d.Tier.Valid() {
				return fmt.Errorf("answer %s: document %s has unknown tier %q", a.ID, d.ID, d.Tier)
			}
		}
	}

	for i := range f.Gaps {
		g := &f.Gaps[i]
		g.AssessmentID = f.Assessment.ID
		if g.ID == "" {
			g.ID = fmt.Sprintf("gap-%d", i+1)
		}
	}

	f.Vendors, f.Duplicates = dedupeVendors(f.Vendors)

	if f.Priorities != nil {
		if f.Priorities.ID == "" {
			f.Priorities.ID = f.Assessment.ID + "-priorities"
		}
		f.Priorities.AssessmentID = f.Assessment.ID
	}
	return nil
}

// dedupeVendors keeps the first vendor for every registrable website domain.
// Vendors without a website are always kept.
func dedupeVendors(vendors []domain.Vendor) ([]domain.Vendor, []string) {
	seen := map[string]string{}
	out := make([]domain.Vendor, 0, len(vendors))
	var dropped []string
	for _, v := range vendors {
		key := textnorm.Domain(v.Website)
		if key != "" {
			if _, dup := seen[key]; dup {
				dropped = append(dropped, v.ID)
				continue
			}
			seen[key] = v.ID
		}
		out = append(out, v)
	}
	return out, dropped
}

// Store loads the fixture into a fresh in-memory store.
func (f *Fixture) Store() *memory.Store {
	s := memory.NewStore()
	s.PutTemplate(f.Template)
	s.PutAssessment(f.Assessment)
	s.PutAnswers(f.Answers...)
	s.PutGaps(f.Assessment.ID, f.Gaps...)
	s.PutVendors(f.Vendors...)
	if f.Priorities != nil {
		s.PutPriorities(*f.Priorities)
	}
	return s
}

// Discover returns the files below root matching pattern, sorted. An empty
// pattern means DefaultPattern.
func Discover(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	sort.Strings(out)
	return out, nil
}
