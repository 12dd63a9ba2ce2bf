package scorerunner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskmatch/internal/adapters/memory"
	"riskmatch/internal/domain"
	"riskmatch/internal/ports"
	"riskmatch/internal/scoring"
)

type fakeScorer struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeScorer) ScoreAssessment(_ context.Context, id string) (scoring.OverallScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
	if id == "broken" {
		return scoring.OverallScore{}, domain.ErrInvalidConfiguration
	}
	return scoring.OverallScore{AssessmentID: id, OverallScore: 80}, nil
}

func (f *fakeScorer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func TestRun(t *testing.T) {
	jobs := memory.NewJobs()
	ctx := context.Background()
	ok1, _ := jobs.Enqueue(ctx, "as1")
	ok2, _ := jobs.Enqueue(ctx, "as2")
	bad, _ := jobs.Enqueue(ctx, "broken")

	scorer := &fakeScorer{}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		Run(runCtx, jobs, ScoreProcessor{Scorer: scorer}, 2, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		for _, id := range []string{ok1, ok2, bad} {
			j, err := jobs.Get(ctx, id)
			if err != nil || j.Status == ports.JobQueued || j.Status == ports.JobRunning {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	for _, id := range []string{ok1, ok2} {
		j, err := jobs.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, ports.JobCompleted, j.Status)
	}
	j, err := jobs.Get(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, ports.JobFailed, j.Status)
	assert.Contains(t, j.Error, "invalid configuration")
	assert.Equal(t, 3, scorer.count())
}

func TestRunZeroConcurrency(t *testing.T) {
	jobs := memory.NewJobs()
	id, _ := jobs.Enqueue(context.Background(), "as1")
	Run(context.Background(), jobs, ScoreProcessor{Scorer: &fakeScorer{}}, 0, time.Millisecond)
	j, err := jobs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ports.JobQueued, j.Status)
}

func TestProcessInline(t *testing.T) {
	jobs := memory.NewJobs()
	ctx := context.Background()
	scorer := &fakeScorer{}

	j, err := ProcessInline(ctx, jobs, ScoreProcessor{Scorer: scorer}, "as1")
	require.NoError(t, err)
	assert.Equal(t, ports.JobCompleted, j.Status)
	assert.Equal(t, 1, j.Attempts)

	j, err = ProcessInline(ctx, jobs, ScoreProcessor{Scorer: scorer}, "broken")
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
	j, _ = jobs.Get(ctx, j.ID)
	assert.Equal(t, ports.JobFailed, j.Status)
}

// A worker claiming between the inline job's creation and its processing
// must neither steal it nor make the inline call fail.
func TestProcessInlineNotClaimable(t *testing.T) {
	jobs := memory.NewJobs()
	ctx := context.Background()
	queued, _ := jobs.Enqueue(ctx, "as-queued")

	claimer := &claimingProcessor{repo: jobs, inner: ScoreProcessor{Scorer: &fakeScorer{}}}
	j, err := ProcessInline(ctx, jobs, claimer, "as-inline")
	require.NoError(t, err)
	assert.Equal(t, ports.JobCompleted, j.Status)

	require.True(t, claimer.found)
	assert.Equal(t, queued, claimer.claimed.ID, "only the queued job is claimable")
	_, found, err := jobs.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

// claimingProcessor runs a worker claim before delegating, the way a
// concurrent dispatcher would.
type claimingProcessor struct {
	repo    ports.JobRepository
	inner   JobProcessor
	claimed ports.ScoreJob
	found   bool
}

func (c *claimingProcessor) Process(ctx context.Context, job ports.ScoreJob) error {
	var err error
	c.claimed, c.found, err = c.repo.ClaimNext(ctx)
	if err != nil {
		return err
	}
	return c.inner.Process(ctx, job)
}
