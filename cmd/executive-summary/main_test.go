package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

func writeKPI(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "overall_kpi.json")
	if err := os.WriteFile(p, []byte(`{"Error":"no comments analyzed"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestRun_WritesNarrative(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "summary.txt")
	c := provider.CompleterFunc(func(ctx context.Context, req provider.Request) (string, error) {
		if !strings.Contains(req.User, "no comments analyzed") {
			t.Errorf("prompt missing report: %q", req.User)
		}
		return "Nothing to report yet.", nil
	})
	var stdout bytes.Buffer
	if err := run(context.Background(), Config{InPath: writeKPI(t, dir), OutPath: out}, c, logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "Nothing to report yet.\n" {
		t.Fatalf("summary=%q", b)
	}
	if !strings.HasPrefix(stdout.String(), "summary_failed=false") {
		t.Fatalf("stdout=%q", stdout.String())
	}
}

func TestRun_ServiceFailureIsSoft(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "summary.txt")
	c := provider.CompleterFunc(func(ctx context.Context, req provider.Request) (string, error) {
		return "", errors.New("401 Unauthorized")
	})
	var stdout bytes.Buffer
	if err := run(context.Background(), Config{InPath: writeKPI(t, dir), OutPath: out}, c, logging.Discard(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), insights.SummaryFailurePrefix+"401 Unauthorized") {
		t.Fatalf("summary=%q", b)
	}
	if !strings.HasPrefix(stdout.String(), "summary_failed=true") {
		t.Fatalf("stdout=%q", stdout.String())
	}
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "summary.txt")
	err := run(context.Background(), Config{InPath: filepath.Join(dir, "nope.json"), OutPath: out}, provider.CompleterFunc(nil), logging.Discard(), &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("summary should not exist: %v", statErr)
	}
}
