// Package app wires the Postgres stores, the ranking cache, the services,
// the HTTP router and the score workers into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	httpadapter "riskmatch/internal/adapters/http"
	"riskmatch/internal/adapters/memory"
	pg "riskmatch/internal/adapters/postgres"
	redisadapter "riskmatch/internal/adapters/redis"
	"riskmatch/internal/config"
	engine "riskmatch/internal/matching"
	"riskmatch/internal/policy"
	"riskmatch/internal/ports"
	"riskmatch/internal/services/compliance"
	matchsvc "riskmatch/internal/services/matching"
	"riskmatch/internal/workers/scorerunner"
)

// Serve connects to Postgres, applies migrations and serves HTTP until ctx
// is cancelled, then drains the listener and the score workers.
func Serve(ctx context.Context, cfg config.Config, pol *policy.Policy) error {
	if cfg.DatabaseURL == "" {
		return config.ErrNoDatabase
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	cache, closeCache, err := RankCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache.Close()

	comp := compliance.New(db, db, db)
	match := matchsvc.New(db, db, db, db, engine.NewScorer(pol), matchsvc.WithCache(cache))
	processor := scorerunner.ScoreProcessor{Scorer: comp}
	api := httpadapter.New(comp, match, db, processor, httpadapter.WithRequestTimeout(cfg.RequestTimeout))

	workerCtx, stopWorkers := context.WithCancel(ctx)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		scorerunner.Run(workerCtx, db, processor, cfg.ScoreWorkers, cfg.PollInterval)
	}()
	// workers must be gone before the deferred db.Close
	defer func() {
		stopWorkers()
		<-workersDone
	}()
	if cfg.ScoreWorkers > 0 {
		log.Printf("score workers started: %d", cfg.ScoreWorkers)
	}

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: api.Routes(), ReadHeaderTimeout: 10 * time.Second}
	return listen(ctx, srv)
}

// listen serves srv until ctx is cancelled or the listener fails.
func listen(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("listening on %s", srv.Addr)

	select {
	case <-ctx.Done():
		log.Printf("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RankCache returns the Redis ranking cache when redis_addr is set, and an
// in-process cache otherwise.
func RankCache(ctx context.Context, cfg config.Config) (ports.RankCache, io.Closer, error) {
	if cfg.RedisAddr == "" {
		return memory.NewRankCache(), nopCloser{}, nil
	}
	client, err := redisadapter.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("match cache: redis %s (ttl %s)", cfg.RedisAddr, cfg.MatchCacheTTL)
	return redisadapter.NewRankCache(client, cfg.MatchCacheTTL), client, nil
}
