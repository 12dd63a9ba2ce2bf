package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"riskmatch/internal/app"
	"riskmatch/internal/config"
	"riskmatch/internal/policy"
)

func main() {
	cfg, err := config.Load(os.Getenv("RISKMATCH_CONFIG"))
	if err != nil {
		if !errors.Is(err, config.ErrNoDatabase) {
			log.Fatalf("config: %v", err)
		}
		log.Printf("warning: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	pol, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, pol); err != nil {
		log.Fatal(err)
	}
}
