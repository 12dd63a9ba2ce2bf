package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	pg "riskmatch/internal/adapters/postgres"
	"riskmatch/internal/app"
	"riskmatch/internal/config"
	"riskmatch/internal/fixture"
)

func newPolicyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the effective matching policy as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPolicy(cmd.OutOrStdout(), g)
		},
	}
}

func runPolicy(w io.Writer, g *globalFlags) error {
	p, err := g.policy()
	if err != nil {
		return err
	}
	data, err := p.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// database loads the configuration and connects to Postgres.
func database(ctx context.Context, g *globalFlags) (config.Config, *pg.DB, error) {
	cfg, err := g.config()
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.DatabaseURL == "" {
		return config.Config{}, nil, exitError(exitInvalidConfig, "%v", config.ErrNoDatabase)
	}
	g.logger()("Connecting to Postgres")
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := database(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

type seedFlags struct {
	migrate bool
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	f := &seedFlags{}
	cmd := &cobra.Command{
		Use:   "seed <fixture>...",
		Short: "Import fixtures into Postgres",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, g, f)
		},
	}
	cmd.Flags().BoolVar(&f.migrate, "migrate", true, "Apply migrations before importing")
	return cmd
}

func runSeed(cmd *cobra.Command, paths []string, g *globalFlags, f *seedFlags) error {
	verbose := g.logger()
	// Parse everything first so a bad file imports nothing.
	fixtures := make([]*fixture.Fixture, 0, len(paths))
	for _, p := range paths {
		fx, err := fixture.Load(p)
		if err != nil {
			return exitError(exitInput, "failed to load fixture: %v", err)
		}
		fixtures = append(fixtures, fx)
	}

	ctx := cmd.Context()
	_, db, err := database(ctx, g)
	if err != nil {
		return err
	}
	defer db.Close()
	if f.migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}
	for _, fx := range fixtures {
		verbose("Importing %s", fx.Path)
		if err := db.Import(ctx, fx); err != nil {
			return classify(err, "import %s", fx.Path)
		}
		cmd.Printf("imported %s (assessment %s, %d vendors)\n", fx.Path, fx.Assessment.ID, len(fx.Vendors))
	}
	return nil
}

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and score workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return exitError(exitInvalidConfig, "%v", config.ErrNoDatabase)
			}
			pol, err := g.policy()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx, cfg, pol)
		},
	}
}
