package ports

import (
	"context"

	"riskmatch/internal/matching"
)

// RankCache keeps the latest match run per assessment and priorities.
type RankCache interface {
	StoreRun(ctx context.Context, run matching.MatchRun) error
	// LatestRun reports found=false when nothing is cached.
	LatestRun(ctx context.Context, assessmentID, prioritiesID string) (run matching.MatchRun, found bool, err error)
	Top(ctx context.Context, assessmentID, prioritiesID string, limit int) ([]matching.RankEntry, error)
}
