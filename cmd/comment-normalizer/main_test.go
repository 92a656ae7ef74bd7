package main

import (
	"bytes"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != filepath.FromSlash("data/export.json") || cfg.OutPath != filepath.FromSlash("data/comments_data.csv") {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseFlags_CleansPaths(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, []string{"-in", "a/../b/export.json", "-out", "out//c.csv", "-edges-path", "posts"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != filepath.FromSlash("b/export.json") || cfg.OutPath != filepath.FromSlash("out/c.csv") || cfg.EdgesPath != "posts" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestValidate_SameInOut(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.OutPath = cfg.InPath
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printSummary(&buf, Config{InPath: "in.json", OutPath: "out.csv"}, stage.NormalizeResult{Records: 4})
	if got, want := buf.String(), "records=4 in=in.json out=out.csv\n"; got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}
