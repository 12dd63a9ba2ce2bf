package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"riskmatch/internal/config"
	"riskmatch/internal/domain"
	"riskmatch/internal/policy"
	"riskmatch/internal/render"
)

var version = "0.1.0"

// Exit codes.
const (
	exitFailThreshold = 2
	exitInput         = 3
	exitInvalidConfig = 4
	exitNotFound      = 5
)

type globalFlags struct {
	configFile string
	policyFile string
	format     string
	noColor    bool
	verbose    bool
}

func (g *globalFlags) logger() func(msg string, args ...any) {
	logger := log.New(os.Stderr, "", 0)
	return func(msg string, args ...any) {
		if g.verbose {
			logger.Printf(msg, args...)
		}
	}
}

func (g *globalFlags) formatter(w io.Writer) (render.Formatter, error) {
	f, err := render.New(g.format, w, !g.noColor)
	if err != nil {
		return nil, exitError(exitInput, "%v", err)
	}
	return f, nil
}

// config loads the configuration file and environment. A missing database
// URL is not an error here; commands that need one check for it.
func (g *globalFlags) config() (config.Config, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil && !errors.Is(err, config.ErrNoDatabase) {
		return config.Config{}, exitError(exitInvalidConfig, "%v", err)
	}
	return cfg, nil
}

// policy resolves --policy, then policy_file from the configuration, then
// the built-in default.
func (g *globalFlags) policy() (*policy.Policy, error) {
	path := g.policyFile
	if path == "" {
		cfg, err := g.config()
		if err != nil {
			return nil, err
		}
		path = cfg.PolicyFile
	}
	p, err := policy.Load(path)
	if err != nil {
		return nil, exitError(exitInvalidConfig, "failed to load policy: %v", err)
	}
	return p, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "riskmatch",
		Short:         "Score compliance assessments and match vendors to their gaps",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "", "Config file (default: ./riskmatch.yaml or ./.riskmatch.yaml)")
	flags.StringVar(&g.policyFile, "policy", "", "Matching policy YAML (default: built-in)")
	flags.StringVar(&g.format, "format", "console", "Output format: console or json")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored console output")
	flags.BoolVar(&g.verbose, "verbose", false, "Print processing steps to stderr")

	root.AddCommand(
		newScoreCmd(g),
		newBatchCmd(g),
		newMatchCmd(g),
		newRankCmd(g),
		newPolicyCmd(g),
		newMigrateCmd(g),
		newSeedCmd(g),
		newServeCmd(g),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// classify maps engine and store errors to exit codes.
func classify(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...) + ": " + err.Error()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &exitErr{code: exitNotFound, msg: msg}
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return &exitErr{code: exitInvalidConfig, msg: msg}
	}
	return errors.New(msg)
}
