package insights

import (
	"bytes"
	"strings"
	"testing"
)

func TestCollectInsights_DedupesInOrder(t *testing.T) {
	t.Parallel()

	results := []AnalysisResult{
		{Analysis: Analysis{ActionableInsights: []string{"Tease sequel", " ", "Post BTS clips"}}},
		{Analysis: Analysis{ActionableInsights: []string{" Tease sequel ", "tease sequel"}}},
	}
	got := CollectInsights(results)
	want := []string{"Tease sequel", "Post BTS clips", "tease sequel"}
	if len(got) != len(want) {
		t.Fatalf("got=%v, want %v", got, want)
	}
	for i, w := range want {
		if got[i].Insight != w || got[i].Status != InsightStatusPending {
			t.Fatalf("got[%d]=%+v, want %q Pending", i, got[i], w)
		}
	}
}

func TestWriteInsightsCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteInsightsCSV(&buf, []InsightItem{{Insight: "Say \"hi\", often", Status: InsightStatusPending}}); err != nil {
		t.Fatalf("WriteInsightsCSV: %v", err)
	}
	want := "Insight,Status\n\"Say \"\"hi\"\", often\",Pending\n"
	if buf.String() != want {
		t.Fatalf("csv=%q, want %q", buf.String(), want)
	}
}

func TestWriteCommentsCSV(t *testing.T) {
	t.Parallel()

	results := []AnalysisResult{
		{PostID: "1", Comment: "Great", Language: "en", Analysis: Analysis{Sentiment: Sentiment{OverallTone: "Positive"}, ThemesAndTopics: []string{"Plot", "Music"}}},
		{PostID: "2", Comment: "فيلم", Analysis: Analysis{}},
	}
	var buf bytes.Buffer
	if err := WriteCommentsCSV(&buf, results); err != nil {
		t.Fatalf("WriteCommentsCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%q", lines)
	}
	if lines[0] != "Post ID,Comment,Tone,Themes,Language" {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[1] != "1,Great,Positive,Plot; Music,en" {
		t.Fatalf("row1=%q", lines[1])
	}
	if lines[2] != "2,فيلم,,,ar" {
		t.Fatalf("row2=%q", lines[2])
	}
}

func TestRenderReport(t *testing.T) {
	t.Parallel()

	report := Aggregate(scenarioResults())
	md := RenderReport(report, "Strong reception.", []InsightItem{{Insight: "Tease\nsequel", Status: InsightStatusPending}})
	for _, want := range []string{
		"# Audience Pulse Report",
		"- total_comments: `4`",
		"| Positive | 50.00% |",
		"## Top themes",
		"- Plot: 2",
		"## Executive summary\n\nStrong reception.",
		"- [ ] Tease sequel",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}

	empty := RenderReport(Aggregate(nil), "", nil)
	if !strings.Contains(empty, EmptyReportMessage) {
		t.Fatalf("empty report=%q", empty)
	}
}
