package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskmatch/internal/domain"
	"riskmatch/internal/matching"
	"riskmatch/internal/ports"
	"riskmatch/internal/scoring"
)

var (
	_ ports.AssessmentStore = (*Store)(nil)
	_ ports.AnswerStore     = (*Store)(nil)
	_ ports.VendorDirectory = (*Store)(nil)
	_ ports.GapStore        = (*Store)(nil)
	_ ports.PrioritiesStore = (*Store)(nil)
	_ ports.ScoreRepository = (*Store)(nil)
	_ ports.JobRepository   = (*Jobs)(nil)
	_ ports.RankCache       = (*RankCache)(nil)
)

func TestStoreNotFound(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.GetAssessment(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetTemplate(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetAnswer(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetPriorities(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.SaveAnswerScore(ctx, "x", scoring.QuestionScore{}), domain.ErrNotFound)

	answers, err := s.ListAnswers(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, answers)
	gaps, err := s.ListGaps(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.PutTemplate(domain.Template{ID: "t1", Sections: []domain.Section{{ID: "s1", Weight: 1, Questions: []domain.Question{{ID: "q1", Weight: 1}}}}})
	s.PutAssessment(domain.Assessment{ID: "as1", TemplateID: "t1"})
	raw := 4.0
	s.PutAnswers(
		domain.Answer{ID: "a2", AssessmentID: "as1", QuestionID: "q1", RawQualityScore: &raw},
		domain.Answer{ID: "a1", AssessmentID: "other", QuestionID: "q1"},
	)
	s.PutVendors(domain.Vendor{ID: "v1", Approved: true}, domain.Vendor{ID: "v2"})
	s.PutGaps("as1", domain.Gap{ID: "g1", Category: "Encryption"})
	s.PutPriorities(domain.Priorities{ID: "p1", AssessmentID: "as1"})

	tmpl, err := s.GetTemplate(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", tmpl.Sections[0].TemplateID)
	assert.Equal(t, "s1", tmpl.Sections[0].Questions[0].SectionID)

	answers, err := s.ListAnswers(ctx, "as1")
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "a2", answers[0].ID)

	vendors, err := s.ListApprovedVendors(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "v1", vendors[0].ID)

	gaps, err := s.ListGaps(ctx, "as1")
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "as1", gaps[0].AssessmentID)

	assert.Equal(t, []string{"p1"}, s.PrioritiesFor("as1"))

	qs := scoring.ScoreAnswer(answers[0])
	require.NoError(t, s.SaveAnswerScore(ctx, "a2", qs))
	a, err := s.GetAnswer(ctx, "a2")
	require.NoError(t, err)
	require.NotNil(t, a.FinalScore)
	assert.InDelta(t, 2.4, *a.FinalScore, 1e-9)
	assert.Equal(t, domain.TierSelfDeclared, a.EvidenceTier)

	exists, _, err := s.GetLatestByAssessment(ctx, "as1")
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, s.SaveAssessmentScore(ctx, scoring.OverallScore{AssessmentID: "as1", OverallScore: 48}))
	exists, got, err := s.GetLatestByAssessment(ctx, "as1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 48, got.OverallScore)
}

func TestJobsLifecycle(t *testing.T) {
	j := NewJobs()
	ctx := context.Background()

	_, found, err := j.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	id1, err := j.Enqueue(ctx, "as1")
	require.NoError(t, err)
	id2, err := j.Enqueue(ctx, "as2")
	require.NoError(t, err)

	job, found, err := j.ClaimNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id1, job.ID)
	assert.Equal(t, ports.JobRunning, job.Status)
	assert.Equal(t, 1, job.Attempts)

	started, err := j.StartNew(ctx, "as3")
	require.NoError(t, err)
	assert.Equal(t, ports.JobRunning, started.Status)
	job, found, err = j.ClaimNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id2, job.ID, "started jobs are never claimed")

	require.NoError(t, j.MarkCompleted(ctx, id1))
	require.NoError(t, j.MarkFailed(ctx, id2, "boom"))

	got, err := j.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, ports.JobCompleted, got.Status)
	assert.NotNil(t, got.FinishedAt)
	got, err = j.Get(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, ports.JobFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	_, err = j.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRankCache(t *testing.T) {
	c := NewRankCache()
	ctx := context.Background()

	_, found, err := c.LatestRun(ctx, "as1", "p1")
	require.NoError(t, err)
	assert.False(t, found)

	run := matching.MatchRun{ID: "r1", AssessmentID: "as1", PrioritiesID: "p1", Matches: []matching.VendorMatchScore{
		{VendorID: "v1", VendorName: "One", TotalScore: 90},
		{VendorID: "v2", VendorName: "Two", TotalScore: 70},
	}}
	require.NoError(t, c.StoreRun(ctx, run))

	got, found, err := c.LatestRun(ctx, "as1", "p1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "r1", got.ID)

	top, err := c.Top(ctx, "as1", "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, []matching.RankEntry{{Rank: 1, VendorID: "v1", VendorName: "One", TotalScore: 90}}, top)
}
