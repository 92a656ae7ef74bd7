package main

import (
	"context"
	"errors"
	"flag"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

// deps are the process-level collaborators, replaced in tests.
type deps struct {
	newCompleter func(ctx context.Context, cfg provider.Config) (provider.Completer, error)
	getenv       func(string) string
	loadEnv      func(filenames ...string) error
}

type globalOptions struct {
	BaseDir   string
	EnvFile   string
	LogLevel  string
	LogFormat string
}

// configError marks errors that should exit with status 2.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func isConfigError(err error) bool {
	var ce *configError
	return errors.As(err, &ce)
}

func newRootCmd(d deps) *cobra.Command {
	g := &globalOptions{BaseDir: "data", LogLevel: "info", LogFormat: "text"}

	root := &cobra.Command{
		Use:           "insights-pipeline",
		Short:         "Comment sentiment pipeline: normalize, analyze, aggregate, summarize, export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if d.loadEnv == nil {
				return nil
			}
			if g.EnvFile != "" {
				if err := d.loadEnv(g.EnvFile); err != nil {
					return &configError{err: err}
				}
				return nil
			}
			// A missing default .env is fine.
			_ = d.loadEnv()
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.BaseDir, "base-dir", g.BaseDir, "Directory holding every pipeline artifact")
	pf.StringVar(&g.EnvFile, "env-file", "", "Load environment variables from this file (default: .env when present)")
	pf.StringVar(&g.LogLevel, "log-level", g.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&g.LogFormat, "log-format", g.LogFormat, "Log format (text or json)")

	root.AddCommand(newRunCmd(d, g), newServeCmd(g))
	return root
}

func (g *globalOptions) logger() (*logrus.Logger, error) {
	l, err := logging.NewLogger(g.LogLevel, g.LogFormat)
	if err != nil {
		return nil, &configError{err: err}
	}
	return l, nil
}

func (g *globalOptions) layout() stage.Layout {
	return stage.Layout{BaseDir: filepath.Clean(g.BaseDir)}
}

type runOptions struct {
	FromStage   string
	OnlyStage   string
	EdgesPath   string
	Concurrency int
	Interval    time.Duration
	Metrics     bool
	Provider    provider.Config
}

func newRunCmd(d deps, g *globalOptions) *cobra.Command {
	o := &runOptions{Concurrency: 1, Interval: insights.DefaultInterval}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline stages in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := g.logger()
			if err != nil {
				return err
			}
			if d.getenv != nil {
				o.Provider = o.Provider.ResolveEnv(d.getenv)
			}
			return runPipeline(cmd.Context(), g.layout(), *o, d.newCompleter, log, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.FromStage, "from-stage", "", "Start at this stage (normalize|analyze|aggregate|summarize|export)")
	f.StringVar(&o.OnlyStage, "only-stage", "", "Run only this stage")
	f.StringVar(&o.EdgesPath, "edges-path", "", "Dotted path to the post list inside export.json")
	f.IntVar(&o.Concurrency, "concurrency", o.Concurrency, "Max concurrent model calls during analyze")
	f.DurationVar(&o.Interval, "interval", o.Interval, "Minimum spacing between model call starts (0 disables pacing)")
	f.BoolVar(&o.Metrics, "metrics", false, "Write a Prometheus textfile (metrics.prom) after analyze")

	gofs := flag.NewFlagSet("provider", flag.ContinueOnError)
	o.Provider.BindFlags(gofs)
	f.AddGoFlagSet(gofs)
	return cmd
}

func newServeCmd(g *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only dashboard API over the artifact directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := g.logger()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), addr, g.layout(), log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
