package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerTo_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := NewLoggerTo(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("NewLoggerTo: %v", err)
	}
	l.WithFields(Fields{"post_id": "p1", "index": 3}).Debug("analyzed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["post_id"] != "p1" || entry["msg"] != "analyzed" || entry["level"] != "debug" {
		t.Fatalf("entry=%v", entry)
	}
}

func TestNewLoggerTo_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := NewLoggerTo(&buf, "warn", "")
	if err != nil {
		t.Fatalf("NewLoggerTo: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("out=%q", buf.String())
	}
}

func TestNewLoggerTo_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewLoggerTo(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := NewLoggerTo(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected error for bad format")
	}
}
