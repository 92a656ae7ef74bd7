package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
)

func TestParseFlags_EmptyOptionalPaths(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, []string{"-kpi", "", "-summary", ""})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.KPIPath != "" || cfg.SummaryPath != "" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRun_RecomputesMissingKPI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	analyzed := filepath.Join(dir, "analyzed_comments.json")
	data := `[{"post_id":"1","comment":"Great","analysis":{"sentiment":{"overall_tone":"Positive"},"actionable_insights":["Release a trailer"]}}]`
	if err := os.WriteFile(analyzed, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outDir := filepath.Join(dir, "exports")
	cfg := Config{AnalyzedPath: analyzed, KPIPath: filepath.Join(dir, "missing.json"), OutDir: outDir}

	var stdout bytes.Buffer
	if err := run(cfg, logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "insights=1 comments=1 files=") {
		t.Fatalf("stdout=%q", stdout.String())
	}
	md, err := os.ReadFile(filepath.Join(outDir, "report.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(md), "- positive_rate: `100.00%`") {
		t.Fatalf("report=%s", md)
	}
	for _, name := range []string{"actionable_insights.csv", "actionable_insights.json", "comments_export.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}
