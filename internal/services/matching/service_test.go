package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskmatch/internal/adapters/memory"
	"riskmatch/internal/domain"
	engine "riskmatch/internal/matching"
)

func days(n int) *int { return &n }

func seed() *memory.Store {
	s := memory.NewStore()
	s.PutAssessment(domain.Assessment{ID: "as1", TemplateID: "t1"})
	s.PutGaps("as1",
		domain.Gap{ID: "g1", Category: "Access Control"},
		domain.Gap{ID: "g2", Category: "Encryption"},
	)
	s.PutPriorities(domain.Priorities{
		ID:                    "p1",
		AssessmentID:          "as1",
		RankedPriorities:      []string{"Access Control", "Encryption", "Logging"},
		MustHaveFeatures:      []string{"SSO"},
		DeploymentPreference:  "cloud",
		ImplementationUrgency: domain.UrgencyShortTerm,
		Jurisdictions:         []string{"US"},
		BudgetRange:           domain.Price10KTo50K,
		CompanySize:           domain.SizeSMB,
	})
	s.PutPriorities(domain.Priorities{ID: "p-other", AssessmentID: "as-other"})
	s.PutVendors(
		domain.Vendor{
			ID:                     "v1",
			Name:                   "Keyholder",
			Approved:               true,
			Categories:             []string{"Access Control", "Encryption"},
			TargetSegments:         []domain.CompanySize{domain.SizeSMB},
			GeographicCoverage:     []string{"GLOBAL"},
			PricingRange:           domain.Price10KTo50K,
			Features:               []string{"SSO"},
			DeploymentOptions:      "Cloud",
			ImplementationTimeline: days(30),
		},
		domain.Vendor{
			ID:                 "v2",
			Name:               "Lockbox",
			Approved:           true,
			Categories:         []string{"Encryption"},
			TargetSegments:     []domain.CompanySize{domain.SizeMidmarket},
			GeographicCoverage: []string{"EU"},
			PricingRange:       domain.Price100KTo250K,
		},
		domain.Vendor{ID: "v3", Name: "Unapproved", Categories: []string{"Access Control"}},
	)
	return s
}

func newService(store *memory.Store, opts ...Option) *Service {
	return New(store, store, store, store, nil, opts...)
}

func TestScoreAllVendors(t *testing.T) {
	store := seed()
	svc := newService(store)
	pr, err := store.GetPriorities(context.Background(), "p1")
	require.NoError(t, err)

	scores, err := svc.ScoreAllVendors(context.Background(), "as1", pr)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "v1", scores[0].VendorID)
	assert.Equal(t, 100, scores[0].TotalBase)
	// v2: 1/2 gaps -> 20, adjacent size -> 15, no geo, one band between -> 10
	assert.Equal(t, "v2", scores[1].VendorID)
	assert.Equal(t, 45, scores[1].TotalBase)

	_, err = svc.ScoreAllVendors(context.Background(), "missing", pr)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTopVendorMatches(t *testing.T) {
	store := seed()
	svc := newService(store)
	pr, _ := store.GetPriorities(context.Background(), "p1")

	top, err := svc.GetTopVendorMatches(context.Background(), "as1", pr, 1, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "v1", top[0].VendorID)

	top, err = svc.GetTopVendorMatches(context.Background(), "as1", pr, 0, 50)
	require.NoError(t, err)
	require.Len(t, top, 1)

	top, err = svc.GetTopVendorMatches(context.Background(), "as1", pr, 0, 0)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestMatchVendorsToAssessment(t *testing.T) {
	store := seed()
	cache := memory.NewRankCache()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(store, WithCache(cache), WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	run, err := svc.MatchVendorsToAssessment(ctx, "as1", "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, fixed, run.GeneratedAt)
	assert.Equal(t, "as1", run.AssessmentID)
	assert.Equal(t, "p1", run.PrioritiesID)
	require.Len(t, run.Matches, 2)
	assert.Equal(t, "v1", run.Matches[0].VendorID)
	assert.Equal(t, 140, run.Matches[0].TotalScore)
	assert.NotEmpty(t, run.Matches[0].MatchReasons)
	// v2 matches priority #2 (Encryption) for 15
	assert.Equal(t, 60, run.Matches[1].TotalScore)

	cached, entries, err := svc.CachedRanking(ctx, "as1", "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, run.ID, cached.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, engine.RankEntry{Rank: 1, VendorID: "v1", VendorName: "Keyholder", TotalScore: 140}, entries[0])
}

func TestMatchVendorsNotFound(t *testing.T) {
	svc := newService(seed())
	ctx := context.Background()

	_, err := svc.MatchVendorsToAssessment(ctx, "missing", "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.MatchVendorsToAssessment(ctx, "as1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.MatchVendorsToAssessment(ctx, "as1", "p-other")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.CachedRanking(ctx, "as1", "p1", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type failingCache struct{ *memory.RankCache }

func (failingCache) StoreRun(context.Context, engine.MatchRun) error {
	return errors.New("redis down")
}

func TestCacheFailureDoesNotFailMatch(t *testing.T) {
	svc := newService(seed(), WithCache(failingCache{memory.NewRankCache()}))
	run, err := svc.MatchVendorsToAssessment(context.Background(), "as1", "p1")
	require.NoError(t, err)
	assert.Len(t, run.Matches, 2)
}
