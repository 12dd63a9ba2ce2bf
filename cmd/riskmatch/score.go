package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"riskmatch/internal/fixture"
	"riskmatch/internal/render"
	"riskmatch/internal/scoring"
	"riskmatch/internal/services/compliance"
)

type scoreFlags struct {
	failBelow int
}

func newScoreCmd(g *globalFlags) *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score <fixture>",
		Short: "Score the assessment in a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), cmd.OutOrStdout(), args[0], g, f)
		},
	}
	cmd.Flags().IntVar(&f.failBelow, "fail-below", 0, "Exit 2 if the overall score is below this value")
	return cmd
}

func runScore(ctx context.Context, w io.Writer, path string, g *globalFlags, f *scoreFlags) error {
	verbose := g.logger()
	out, err := g.formatter(w)
	if err != nil {
		return err
	}

	verbose("Loading fixture: %s", path)
	fx, err := fixture.Load(path)
	if err != nil {
		return exitError(exitInput, "failed to load fixture: %v", err)
	}
	score, err := scoreFixture(ctx, fx)
	if err != nil {
		return classify(err, "score %s", fx.Assessment.ID)
	}
	verbose("Scored %d sections", len(score.SectionScores))
	if err := out.Score(score); err != nil {
		return err
	}
	if f.failBelow > 0 && score.OverallScore < f.failBelow {
		return exitError(exitFailThreshold, "overall score %d is below %d", score.OverallScore, f.failBelow)
	}
	return nil
}

func scoreFixture(ctx context.Context, fx *fixture.Fixture) (scoring.OverallScore, error) {
	store := fx.Store()
	return compliance.New(store, store, store).ScoreAssessment(ctx, fx.Assessment.ID)
}

type batchFlags struct {
	pattern   string
	failBelow int
}

func newBatchCmd(g *globalFlags) *cobra.Command {
	f := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Score every fixture below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), root, g, f)
		},
	}
	cmd.Flags().StringVar(&f.pattern, "pattern", fixture.DefaultPattern, "Glob pattern for fixture files, relative to dir")
	cmd.Flags().IntVar(&f.failBelow, "fail-below", 0, "Exit 2 if any overall score is below this value")
	return cmd
}

func runBatch(ctx context.Context, w io.Writer, root string, g *globalFlags, f *batchFlags) error {
	verbose := g.logger()
	out, err := g.formatter(w)
	if err != nil {
		return err
	}

	paths, err := fixture.Discover(root, f.pattern)
	if err != nil {
		return exitError(exitInput, "%v", err)
	}
	verbose("Discovered %d fixtures under %s", len(paths), root)
	if len(paths) == 0 {
		return exitError(exitInput, "no fixtures match %q under %s", f.pattern, root)
	}

	results := make([]render.BatchResult, 0, len(paths))
	failed, below := 0, 0
	for _, p := range paths {
		verbose("Scoring %s", p)
		r := render.BatchResult{Path: p}
		fx, err := fixture.Load(p)
		if err == nil {
			var s scoring.OverallScore
			if s, err = scoreFixture(ctx, fx); err == nil {
				r.Score = &s
				if f.failBelow > 0 && s.OverallScore < f.failBelow {
					below++
				}
			}
		}
		if err != nil {
			r.Err = err
			failed++
		}
		results = append(results, r)
	}

	if err := out.Batch(results); err != nil {
		return err
	}
	if failed > 0 {
		return exitError(exitInput, "%d of %d fixtures failed", failed, len(paths))
	}
	if below > 0 {
		return exitError(exitFailThreshold, "%d of %d fixtures scored below %d", below, len(paths), f.failBelow)
	}
	return nil
}
