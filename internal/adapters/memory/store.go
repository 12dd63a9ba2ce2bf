// Package memory implements the store ports over maps. It backs the CLI's
// fixture runs and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"riskmatch/internal/domain"
	"riskmatch/internal/scoring"
)

type Store struct {
	mu          sync.RWMutex
	templates   map[string]domain.Template
	assessments map[string]domain.Assessment
	answers     map[string]domain.Answer
	answerOrder []string
	vendors     []domain.Vendor
	gaps        map[string][]domain.Gap
	priorities  map[string]domain.Priorities
	scores      map[string]scoring.OverallScore
}

func NewStore() *Store {
	return &Store{
		templates:   map[string]domain.Template{},
		assessments: map[string]domain.Assessment{},
		answers:     map[string]domain.Answer{},
		gaps:        map[string][]domain.Gap{},
		priorities:  map[string]domain.Priorities{},
		scores:      map[string]scoring.OverallScore{},
	}
}

func (s *Store) PutTemplate(t domain.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range t.Sections {
		t.Sections[i].TemplateID = t.ID
		for j := range t.Sections[i].Questions {
			t.Sections[i].Questions[j].SectionID = t.Sections[i].ID
		}
	}
	s.templates[t.ID] = t
}

func (s *Store) PutAssessment(a domain.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[a.ID] = a
}

func (s *Store) PutAnswers(answers ...domain.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range answers {
		if _, ok := s.answers[a.ID]; !ok {
			s.answerOrder = append(s.answerOrder, a.ID)
		}
		s.answers[a.ID] = a
	}
}

func (s *Store) PutVendors(vendors ...domain.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors = append(s.vendors, vendors...)
}

func (s *Store) PutGaps(assessmentID string, gaps ...domain.Gap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range gaps {
		g.AssessmentID = assessmentID
		s.gaps[assessmentID] = append(s.gaps[assessmentID], g)
	}
}

func (s *Store) PutPriorities(p domain.Priorities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priorities[p.ID] = p
}

// AssessmentStore

func (s *Store) GetAssessment(_ context.Context, id string) (domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[id]
	if !ok {
		return domain.Assessment{}, fmt.Errorf("assessment %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return domain.Template{}, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

// AnswerStore

func (s *Store) GetAnswer(_ context.Context, id string) (domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[id]
	if !ok {
		return domain.Answer{}, fmt.Errorf("answer %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAnswers(_ context.Context, assessmentID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Answer{}
	for _, id := range s.answerOrder {
		if a := s.answers[id]; a.AssessmentID == assessmentID {
			out = append(out, a)
		}
	}
	return out, nil
}

// VendorDirectory

func (s *Store) ListApprovedVendors(_ context.Context) ([]domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		if v.Approved {
			out = append(out, v)
		}
	}
	return out, nil
}

// GapStore

func (s *Store) ListGaps(_ context.Context, assessmentID string) ([]domain.Gap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Gap{}, s.gaps[assessmentID]...), nil
}

// PrioritiesStore

func (s *Store) GetPriorities(_ context.Context, id string) (domain.Priorities, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.priorities[id]
	if !ok {
		return domain.Priorities{}, fmt.Errorf("priorities %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// PrioritiesFor returns the ids of the priorities recorded for an
// assessment, sorted.
func (s *Store) PrioritiesFor(assessmentID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, p := range s.priorities {
		if p.AssessmentID == assessmentID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ScoreRepository

func (s *Store) SaveAnswerScore(_ context.Context, answerID string, qs scoring.QuestionScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[answerID]
	if !ok {
		return fmt.Errorf("answer %s: %w", answerID, domain.ErrNotFound)
	}
	tier, m, final := qs.EvidenceTier, qs.TierMultiplier, qs.FinalScore
	a.EvidenceTier = tier
	a.TierMultiplier = &m
	a.FinalScore = &final
	s.answers[answerID] = a
	return nil
}

func (s *Store) SaveAssessmentScore(_ context.Context, score scoring.OverallScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[score.AssessmentID] = score
	return nil
}

func (s *Store) GetLatestByAssessment(_ context.Context, assessmentID string) (bool, scoring.OverallScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.scores[assessmentID]
	return ok, out, nil
}
