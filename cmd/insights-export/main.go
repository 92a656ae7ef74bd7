package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

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
	res, err := stage.Export(stage.ExportOptions{
		AnalyzedPath: cfg.AnalyzedPath,
		KPIPath:      cfg.KPIPath,
		SummaryPath:  cfg.SummaryPath,
		Layout:       stage.Layout{BaseDir: cfg.OutDir},
		Logger:       log,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "insights=%d comments=%d files=%s\n", res.Insights, res.Comments, strings.Join(res.Files, ","))
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.AnalyzedPath, "analyzed", cfg.AnalyzedPath, "Path to analyzed_comments.json")
	fs.StringVar(&cfg.KPIPath, "kpi", cfg.KPIPath, "Optional overall_kpi.json (recomputed when missing)")
	fs.StringVar(&cfg.SummaryPath, "summary", cfg.SummaryPath, "Optional executive summary text to embed in report.md")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory for exports and report.md")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.AnalyzedPath = filepath.Clean(cfg.AnalyzedPath)
	cfg.OutDir = filepath.Clean(cfg.OutDir)
	if cfg.KPIPath != "" {
		cfg.KPIPath = filepath.Clean(cfg.KPIPath)
	}
	if cfg.SummaryPath != "" {
		cfg.SummaryPath = filepath.Clean(cfg.SummaryPath)
	}
	return cfg, nil
}
