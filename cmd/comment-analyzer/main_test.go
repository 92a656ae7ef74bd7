package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

func TestParseFlags_ProviderFlags(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseFlags(fs, []string{"-provider", "openrouter", "-api-key", "k", "-concurrency", "3", "-interval", "250ms"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg.Provider = cfg.Provider.ResolveEnv(func(string) string { return "" })
	if cfg.Provider.Provider != provider.OpenRouter || cfg.Provider.Model != provider.DefaultModel(provider.OpenRouter) {
		t.Fatalf("provider=%+v", cfg.Provider)
	}
	if cfg.Concurrency != 3 || cfg.Interval != 250*time.Millisecond {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_MissingKey(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Provider = cfg.Provider.ResolveEnv(func(string) string { return "" })
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("err=%v", err)
	}
}

func TestIntervalOption(t *testing.T) {
	t.Parallel()

	if got := intervalOption(Config{}); got >= 0 {
		t.Fatalf("zero interval=%v, want negative (disabled)", got)
	}
	if got := intervalOption(Config{Interval: time.Second}); got != time.Second {
		t.Fatalf("got=%v", got)
	}
}

func TestRun_EndToEndWithFakeModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "comments_data.csv")
	out := filepath.Join(dir, "analyzed_comments.json")
	if err := os.WriteFile(in, []byte("id,comment\n1,Great movie!\n2,\n3,Too long\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	completer := provider.CompleterFunc(func(ctx context.Context, req provider.Request) (string, error) {
		if strings.Contains(req.User, "Post ID: 3\n") {
			return "not json", nil
		}
		return `{"analysis":{"sentiment":{"overall_tone":"Positive"}}}`, nil
	})
	cfg := Config{InPath: in, OutPath: out}
	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, completer, logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "records=2 analyzed=1 failed=1 not_attempted=0 written=true out=" + out + "\n"
	if stdout.String() != want {
		t.Fatalf("stdout=%q want=%q", stdout.String(), want)
	}
}

func TestRun_EmptyInputIsNotFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "comments_data.csv")
	if err := os.WriteFile(in, []byte("id,comment\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Config{InPath: in, OutPath: filepath.Join(dir, "out.json")}
	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, provider.CompleterFunc(nil), logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "written=false") {
		t.Fatalf("stdout=%q", stdout.String())
	}
}

func TestRun_MissingInputFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{InPath: filepath.Join(dir, "nope.csv"), OutPath: filepath.Join(dir, "out.json")}
	if err := run(context.Background(), cfg, provider.CompleterFunc(nil), logging.Discard(), io.Discard); err == nil {
		t.Fatalf("expected error")
	}
}
