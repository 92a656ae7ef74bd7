package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	log, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := run(cfg, log, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cfg Config, log *logrus.Logger, stdout io.Writer) error {
	report, err := stage.Aggregate(stage.AggregateOptions{InputPath: cfg.InPath, OutputPath: cfg.OutPath, Logger: log})
	if err != nil {
		return err
	}
	if report.IsEmpty() {
		fmt.Fprintf(stdout, "total=0 error=%q out=%s\n", report.Error, cfg.OutPath)
		return nil
	}
	fmt.Fprintf(stdout, "total=%d positive_rate=%s character_focus=%s questions=%d insights=%d out=%s\n",
		report.TotalAnalyzed,
		report.Sentiment.OverallPositiveRate,
		report.CharacterFocusRate,
		report.ViewerCuriosityVolume,
		report.TotalActionableInsights,
		cfg.OutPath,
	)
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to analyzed_comments.json")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the KPI report")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	return cfg, nil
}
