package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

func TestSummaryGenerator_Summarize(t *testing.T) {
	t.Parallel()

	var got provider.Request
	c := provider.CompleterFunc(func(ctx context.Context, req provider.Request) (string, error) {
		got = req
		return "  Audiences loved it.\n", nil
	})
	n := NewSummaryGenerator(c).Summarize(context.Background(), Aggregate(scenarioResults()))
	if n.Failed() {
		t.Fatalf("unexpected failure: %v", n.Err)
	}
	if n.Text != "Audiences loved it." {
		t.Fatalf("Text=%q", n.Text)
	}
	if got.Format != provider.FormatText {
		t.Fatalf("Format=%v, want text", got.Format)
	}
	if !strings.Contains(got.System, "two labeled sections (Summary and Suggestions)") {
		t.Fatalf("system prompt does not require the two sections: %q", got.System)
	}
	if !strings.Contains(got.User, `"Overall_Positive_Rate": "50.00%"`) {
		t.Fatalf("prompt missing indented KPI JSON: %q", got.User)
	}
}

func TestSummaryGenerator_SoftFailure(t *testing.T) {
	t.Parallel()

	c := staticCompleter("", errors.New("connection refused"))
	n := NewSummaryGenerator(c).Summarize(context.Background(), Aggregate(scenarioResults()))
	if !n.Failed() {
		t.Fatalf("expected failure")
	}
	if n.Text != SummaryFailurePrefix+"connection refused" {
		t.Fatalf("Text=%q", n.Text)
	}
}

func TestSummaryGenerator_EmptyOutputIsFailure(t *testing.T) {
	t.Parallel()

	n := NewSummaryGenerator(staticCompleter("   ", nil)).Summarize(context.Background(), Aggregate(nil))
	if !errors.Is(n.Err, provider.ErrEmptyResponse) {
		t.Fatalf("Err=%v, want ErrEmptyResponse", n.Err)
	}
	if !strings.HasPrefix(n.Text, SummaryFailurePrefix) {
		t.Fatalf("Text=%q", n.Text)
	}
}

func TestBuildSummaryPrompt_TwoSections(t *testing.T) {
	t.Parallel()

	p := BuildSummaryPrompt(`{"Total Comments Analyzed": 4}`)
	for _, want := range []string{
		"two labeled parts",
		"Part 1 (Summary)", "3-line executive summary",
		"Part 2 (Suggestions)", "Three (3) concrete suggestions",
		`"Top Themes & Topics"`, `"Viewer_Curiosity_Volume"`,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	for _, unwanted := range []string{"three to five", "Two or three"} {
		if strings.Contains(p, unwanted) {
			t.Fatalf("prompt still contains %q", unwanted)
		}
	}
	if !strings.HasSuffix(p, `{"Total Comments Analyzed": 4}`) {
		t.Fatalf("KPI data not embedded at the end: %q", p)
	}
}
