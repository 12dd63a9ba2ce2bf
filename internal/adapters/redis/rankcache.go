package redisadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"riskmatch/internal/matching"
)

// RankCache stores each match run twice: the full run as a JSON blob, and
// a sorted set of vendor ids for rank lookups. Both keys expire after ttl.
type RankCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankCache(client *redis.Client, ttl time.Duration) *RankCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RankCache{client: client, ttl: ttl}
}

// Connect opens a client for addr and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *RankCache) runKey(assessmentID, prioritiesID string) string {
	return fmt.Sprintf("match:%s:%s:run", assessmentID, prioritiesID)
}

func (c *RankCache) boardKey(assessmentID, prioritiesID string) string {
	return fmt.Sprintf("match:%s:%s:lb", assessmentID, prioritiesID)
}

func (c *RankCache) namesKey(assessmentID, prioritiesID string) string {
	return fmt.Sprintf("match:%s:%s:names", assessmentID, prioritiesID)
}

// boardScore keeps the run's order inside the sorted set: the integer part
// is the total score and the fraction decreases with the run position, so
// ties sort exactly as the run does.
func boardScore(total, pos, n int) float64 {
	return float64(total) + float64(n-pos)/float64(n+1)
}

func (c *RankCache) StoreRun(ctx context.Context, run matching.MatchRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode match run: %w", err)
	}
	board := c.boardKey(run.AssessmentID, run.PrioritiesID)
	names := c.namesKey(run.AssessmentID, run.PrioritiesID)

	members := make([]redis.Z, len(run.Matches))
	fields := make([]any, 0, 2*len(run.Matches))
	for i, m := range run.Matches {
		members[i] = redis.Z{Score: boardScore(m.TotalScore, i, len(run.Matches)), Member: m.VendorID}
		fields = append(fields, m.VendorID, m.VendorName)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.runKey(run.AssessmentID, run.PrioritiesID), data, c.ttl)
		pipe.Del(ctx, board, names)
		if len(members) > 0 {
			pipe.ZAdd(ctx, board, members...)
			pipe.HSet(ctx, names, fields...)
			pipe.Expire(ctx, board, c.ttl)
			pipe.Expire(ctx, names, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store match run %s: %w", run.ID, err)
	}
	return nil
}

func (c *RankCache) LatestRun(ctx context.Context, assessmentID, prioritiesID string) (matching.MatchRun, bool, error) {
	data, err := c.client.Get(ctx, c.runKey(assessmentID, prioritiesID)).Bytes()
	if err == redis.Nil {
		return matching.MatchRun{}, false, nil
	}
	if err != nil {
		return matching.MatchRun{}, false, err
	}
	var run matching.MatchRun
	if err := json.Unmarshal(data, &run); err != nil {
		return matching.MatchRun{}, false, fmt.Errorf("decode match run: %w", err)
	}
	return run, true, nil
}

func (c *RankCache) Top(ctx context.Context, assessmentID, prioritiesID string, limit int) ([]matching.RankEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.boardKey(assessmentID, prioritiesID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]matching.RankEntry, len(results))
	if len(results) == 0 {
		return entries, nil
	}
	ids := make([]string, len(results))
	for i, z := range results {
		ids[i], _ = z.Member.(string)
	}
	names, err := c.client.HMGet(ctx, c.namesKey(assessmentID, prioritiesID), ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, z := range results {
		name, _ := names[i].(string)
		entries[i] = matching.RankEntry{
			Rank:       i + 1,
			VendorID:   ids[i],
			VendorName: name,
			TotalScore: int(math.Floor(z.Score)),
		}
	}
	return entries, nil
}
