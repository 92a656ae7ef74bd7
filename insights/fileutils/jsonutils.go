package fileutils

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ExtractModelJSON returns the JSON object contained in a model response. It tolerates
// surrounding whitespace, markdown code fences and stray text around a single top-level
// object, but never repairs the object itself.
func ExtractModelJSON(outputText string) (string, error) {
	s := stripCodeFence(outputText)
	if s == "" {
		return "", io.ErrUnexpectedEOF
	}

	// Fast path: valid JSON as-is.
	if json.Valid([]byte(s)) {
		return s, nil
	}

	// Fallback: attempt to extract the first top-level JSON object.
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	sub := s[start : end+1]
	if !json.Valid([]byte(sub)) {
		return "", fmt.Errorf("invalid JSON object in model output (len=%d)", len(sub))
	}
	return sub, nil
}

// DecodeModelJSON unmarshals the JSON object found by ExtractModelJSON into v.
func DecodeModelJSON(outputText string, v any) error {
	s, err := ExtractModelJSON(outputText)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to unmarshal model JSON (len=%d): %w", len(s), err)
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
