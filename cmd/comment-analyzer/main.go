package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/metrics"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	cfg.Provider = cfg.Provider.ResolveEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	log, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := provider.New(ctx, cfg.Provider)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if err := run(ctx, cfg, completer, log, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// run analyzes every record and prints the summary line. An empty batch is reported but is
// not a failure.
func run(ctx context.Context, cfg Config, completer provider.Completer, log *logrus.Logger, stdout io.Writer) error {
	var mc *metrics.Collector
	if cfg.MetricsPath != "" {
		mc = metrics.NewCollector()
	}
	res, err := stage.Analyze(ctx, stage.AnalyzeOptions{
		InputPath:   cfg.InPath,
		OutputPath:  cfg.OutPath,
		EdgesPath:   cfg.EdgesPath,
		Analyzer:    insights.NewAnalyzer(completer),
		Batch:       insights.BatchOptions{Concurrency: cfg.Concurrency, Interval: intervalOption(cfg)},
		Metrics:     mc,
		MetricsPath: cfg.MetricsPath,
		Logger:      log,
	})
	var empty *insights.EmptyBatchError
	if err != nil && !errors.As(err, &empty) {
		return err
	}
	fmt.Fprintf(stdout, "records=%d analyzed=%d failed=%d not_attempted=%d written=%t out=%s\n",
		res.Records, res.Analyzed, res.Failed, res.NotAttempted, res.Written, cfg.OutPath)
	return nil
}

// intervalOption maps -interval 0 to "no pacing"; BatchOptions treats zero as the default.
func intervalOption(cfg Config) time.Duration {
	if cfg.Interval == 0 {
		return -1
	}
	return cfg.Interval
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Input comments: id,comment CSV or a platform export .json")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for analyzed_comments.json")
	fs.StringVar(&cfg.EdgesPath, "edges-path", "", "Dotted path to the post list when -in is an export")
	fs.StringVar(&cfg.MetricsPath, "metrics", "", "Optional Prometheus textfile output path")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max concurrent model calls")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Minimum spacing between model call starts (0 disables pacing)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	cfg.Provider.BindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	if cfg.MetricsPath != "" {
		cfg.MetricsPath = filepath.Clean(cfg.MetricsPath)
	}
	return cfg, nil
}
