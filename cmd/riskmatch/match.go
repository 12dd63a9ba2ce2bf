package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"riskmatch/internal/fixture"
	engine "riskmatch/internal/matching"
	matchsvc "riskmatch/internal/services/matching"
)

type matchFlags struct {
	limit int
}

func newMatchCmd(g *globalFlags) *cobra.Command {
	f := &matchFlags{}
	cmd := &cobra.Command{
		Use:   "match <fixture>",
		Short: "Rank vendors by base score plus priority boost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), cmd.OutOrStdout(), args[0], g, f)
		},
	}
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Show at most this many vendors (0 = all)")
	return cmd
}

// loadMatching loads a fixture that states priorities and builds the
// matching service over it.
func loadMatching(path string, g *globalFlags) (*fixture.Fixture, *matchsvc.Service, error) {
	verbose := g.logger()
	pol, err := g.policy()
	if err != nil {
		return nil, nil, err
	}
	verbose("Loading fixture: %s", path)
	fx, err := fixture.Load(path)
	if err != nil {
		return nil, nil, exitError(exitInput, "failed to load fixture: %v", err)
	}
	if fx.Priorities == nil {
		return nil, nil, exitError(exitInput, "fixture %s has no priorities", path)
	}
	for _, d := range fx.Duplicates {
		verbose("Skipping vendor %s: duplicate website domain", d)
	}
	store := fx.Store()
	return fx, matchsvc.New(store, store, store, store, engine.NewScorer(pol)), nil
}

func runMatch(ctx context.Context, w io.Writer, path string, g *globalFlags, f *matchFlags) error {
	out, err := g.formatter(w)
	if err != nil {
		return err
	}
	fx, svc, err := loadMatching(path, g)
	if err != nil {
		return err
	}
	run, err := svc.MatchVendorsToAssessment(ctx, fx.Assessment.ID, fx.Priorities.ID)
	if err != nil {
		return classify(err, "match %s", fx.Assessment.ID)
	}
	g.logger()("Matched %d vendors", len(run.Matches))
	if f.limit > 0 && len(run.Matches) > f.limit {
		run.Matches = run.Matches[:f.limit]
	}
	return out.Matches(run)
}

type rankFlags struct {
	limit    int
	minScore int
	all      bool
}

func newRankCmd(g *globalFlags) *cobra.Command {
	f := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "rank <fixture>",
		Short: "Rank vendors by base score only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd.Context(), cmd.OutOrStdout(), args[0], g, f)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&f.limit, "limit", 10, "Show at most this many vendors (0 = all)")
	flags.IntVar(&f.minScore, "min-score", 0, "Drop vendors whose base score is below this value")
	flags.BoolVar(&f.all, "all", false, "Print every approved vendor in directory order, unfiltered")
	return cmd
}

func runRank(ctx context.Context, w io.Writer, path string, g *globalFlags, f *rankFlags) error {
	out, err := g.formatter(w)
	if err != nil {
		return err
	}
	fx, svc, err := loadMatching(path, g)
	if err != nil {
		return err
	}
	var scores []engine.BaseScore
	if f.all {
		scores, err = svc.ScoreAllVendors(ctx, fx.Assessment.ID, *fx.Priorities)
	} else {
		scores, err = svc.GetTopVendorMatches(ctx, fx.Assessment.ID, *fx.Priorities, f.limit, f.minScore)
	}
	if err != nil {
		return classify(err, "rank %s", fx.Assessment.ID)
	}
	return out.Vendors(scores)
}
