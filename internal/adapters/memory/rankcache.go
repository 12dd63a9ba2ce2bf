package memory

import (
	"context"
	"sync"

	"riskmatch/internal/matching"
)

// RankCache keeps the latest match run per assessment and priorities pair.
type RankCache struct {
	mu   sync.RWMutex
	runs map[[2]string]matching.MatchRun
}

func NewRankCache() *RankCache {
	return &RankCache{runs: map[[2]string]matching.MatchRun{}}
}

func (c *RankCache) StoreRun(_ context.Context, run matching.MatchRun) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[[2]string{run.AssessmentID, run.PrioritiesID}] = run
	return nil
}

func (c *RankCache) LatestRun(_ context.Context, assessmentID, prioritiesID string) (matching.MatchRun, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	run, ok := c.runs[[2]string{assessmentID, prioritiesID}]
	return run, ok, nil
}

func (c *RankCache) Top(_ context.Context, assessmentID, prioritiesID string, limit int) ([]matching.RankEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	run, ok := c.runs[[2]string{assessmentID, prioritiesID}]
	if !ok {
		return []matching.RankEntry{}, nil
	}
	return run.Entries(limit), nil
}
