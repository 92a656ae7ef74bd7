package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, []string{"-in", "./runs/a.json"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != filepath.FromSlash("runs/a.json") || cfg.OutPath != filepath.FromSlash("data/overall_kpi.json") {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "analyzed.json")
	out := filepath.Join(dir, "kpi.json")
	data := `[{"post_id":"1","comment":"a","analysis":{"sentiment":{"overall_tone":"Positive"},"themes_and_topics":["Character Analysis"],"viewer_questions":[{"question":"q","type":"t"}],"actionable_insights":["x","y"]}},
	          {"post_id":"2","comment":"b","analysis":{"sentiment":{"overall_tone":"Neutral"}}}]`
	if err := os.WriteFile(in, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var stdout bytes.Buffer
	if err := run(Config{InPath: in, OutPath: out}, logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "total=2 positive_rate=50.00% character_focus=50.00% questions=1 insights=2 out=" + out + "\n"
	if stdout.String() != want {
		t.Fatalf("stdout=%q want=%q", stdout.String(), want)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("kpi not written: %v", err)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "analyzed.json")
	if err := os.WriteFile(in, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout bytes.Buffer
	if err := run(Config{InPath: in, OutPath: filepath.Join(dir, "kpi.json")}, logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte(`total=0 error="no comments analyzed"`)) {
		t.Fatalf("stdout=%q", stdout.String())
	}
}
