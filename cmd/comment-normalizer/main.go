package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
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

	res, err := stage.Normalize(stage.NormalizeOptions{
		InputPath:  cfg.InPath,
		OutputPath: cfg.OutPath,
		EdgesPath:  cfg.EdgesPath,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	printSummary(os.Stdout, cfg, res)
}

func printSummary(w io.Writer, cfg Config, res stage.NormalizeResult) {
	fmt.Fprintf(w, "records=%d in=%s out=%s\n", res.Records, cfg.InPath, cfg.OutPath)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to the platform export JSON")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the id,comment CSV")
	fs.StringVar(&cfg.EdgesPath, "edges-path", "", "Dotted path to the post list inside the export (default: "+insights.DefaultEdgesPath+")")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InPath = filepath.Clean(cfg.InPath)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	return cfg, nil
}
