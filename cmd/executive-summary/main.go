package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
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

// run writes the narrative. A failed generation still exits cleanly: the artifact carries the
// failure text.
func run(ctx context.Context, cfg Config, completer provider.Completer, log *logrus.Logger, stdout io.Writer) error {
	n, err := stage.Summarize(ctx, stage.SummarizeOptions{
		InputPath:  cfg.InPath,
		OutputPath: cfg.OutPath,
		Generator:  insights.NewSummaryGenerator(completer),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "summary_failed=%t chars=%d out=%s\n", n.Failed(), len([]rune(n.Text)), cfg.OutPath)
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to overall_kpi.json")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the executive summary text")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	cfg.Provider.BindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	return cfg, nil
}
