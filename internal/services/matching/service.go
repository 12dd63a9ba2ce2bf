package matching

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"riskmatch/internal/domain"
	engine "riskmatch/internal/matching"
	"riskmatch/internal/ports"
)

type Service struct {
	assessments ports.AssessmentStore
	vendors     ports.VendorDirectory
	gaps        ports.GapStore
	priorities  ports.PrioritiesStore
	scorer      *engine.Scorer
	cache       ports.RankCache
	now         func() time.Time
}

type Option func(*Service)

// WithCache stores every match run in c.
func WithCache(c ports.RankCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(assessments ports.AssessmentStore, vendors ports.VendorDirectory, gaps ports.GapStore, priorities ports.PrioritiesStore, scorer *engine.Scorer, opts ...Option) *Service {
	if scorer == nil {
		scorer = engine.NewScorer(nil)
	}
	s := &Service{
		assessments: assessments,
		vendors:     vendors,
		gaps:        gaps,
		priorities:  priorities,
		scorer:      scorer,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ScoreAllVendors returns the base score of every approved vendor in
// directory order.
func (s *Service) ScoreAllVendors(ctx context.Context, assessmentID string, pr domain.Priorities) ([]engine.BaseScore, error) {
	vendors, gaps, err := s.load(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.scorer.ScoreAll(vendors, pr, gaps), nil
}

// GetTopVendorMatches ranks base scores, keeping those >= minScore, and
// returns at most limit of them (all when limit <= 0).
func (s *Service) GetTopVendorMatches(ctx context.Context, assessmentID string, pr domain.Priorities, limit, minScore int) ([]engine.BaseScore, error) {
	all, err := s.ScoreAllVendors(ctx, assessmentID, pr)
	if err != nil {
		return nil, err
	}
	return engine.RankBase(all, limit, minScore), nil
}

// MatchVendorsToAssessment runs the full pipeline. Cache failures are
// logged and do not fail the match.
func (s *Service) MatchVendorsToAssessment(ctx context.Context, assessmentID, prioritiesID string) (engine.MatchRun, error) {
	vendors, gaps, err := s.load(ctx, assessmentID)
	if err != nil {
		return engine.MatchRun{}, err
	}
	pr, err := s.Priorities(ctx, assessmentID, prioritiesID)
	if err != nil {
		return engine.MatchRun{}, err
	}
	run := engine.MatchRun{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		PrioritiesID: prioritiesID,
		GeneratedAt:  s.now().UTC(),
		Matches:      s.scorer.MatchAll(vendors, pr, gaps),
	}
	if s.cache != nil {
		if err := s.cache.StoreRun(ctx, run); err != nil {
			log.Printf("match run %s: cache store failed: %v", run.ID, err)
		}
	}
	return run, nil
}

// Priorities loads a priorities record and checks it belongs to the
// assessment.
func (s *Service) Priorities(ctx context.Context, assessmentID, prioritiesID string) (domain.Priorities, error) {
	pr, err := s.priorities.GetPriorities(ctx, prioritiesID)
	if err != nil {
		return domain.Priorities{}, err
	}
	if pr.AssessmentID != "" && pr.AssessmentID != assessmentID {
		return domain.Priorities{}, fmt.Errorf("priorities %s for assessment %s: %w", prioritiesID, assessmentID, domain.ErrNotFound)
	}
	return pr, nil
}

// CachedRanking returns the latest cached run's id and top entries.
func (s *Service) CachedRanking(ctx context.Context, assessmentID, prioritiesID string, limit int) (engine.MatchRun, []engine.RankEntry, error) {
	if s.cache == nil {
		return engine.MatchRun{}, nil, fmt.Errorf("cached ranking %s/%s: %w", assessmentID, prioritiesID, domain.ErrNotFound)
	}
	run, found, err := s.cache.LatestRun(ctx, assessmentID, prioritiesID)
	if err != nil {
		return engine.MatchRun{}, nil, fmt.Errorf("cached ranking: %w", err)
	}
	if !found {
		return engine.MatchRun{}, nil, fmt.Errorf("cached ranking %s/%s: %w", assessmentID, prioritiesID, domain.ErrNotFound)
	}
	entries, err := s.cache.Top(ctx, assessmentID, prioritiesID, limit)
	if err != nil {
		return engine.MatchRun{}, nil, fmt.Errorf("cached ranking: %w", err)
	}
	return run, entries, nil
}

func (s *Service) load(ctx context.Context, assessmentID string) ([]domain.Vendor, []domain.Gap, error) {
	if _, err := s.assessments.GetAssessment(ctx, assessmentID); err != nil {
		return nil, nil, err
	}
	vendors, err := s.vendors.ListApprovedVendors(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list vendors: %w", err)
	}
	gaps, err := s.gaps.ListGaps(ctx, assessmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("list gaps: %w", err)
	}
	return vendors, gaps, nil
}
