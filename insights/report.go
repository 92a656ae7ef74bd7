package insights

import (
	"fmt"
	"strings"
)

// RenderReport renders a human-readable markdown digest of a pipeline run.
func RenderReport(report KPIReport, narrative string, insights []InsightItem) string {
	var b strings.Builder
	b.WriteString("# Audience Pulse Report\n\n")

	if report.IsEmpty() {
		fmt.Fprintf(&b, "_%s_\n", escapeMarkdownInline(report.Error))
		return b.String()
	}

	b.WriteString("## Key metrics\n\n")
	fmt.Fprintf(&b, "- total_comments: `%d`\n", report.TotalAnalyzed)
	fmt.Fprintf(&b, "- positive_rate: `%s`\n", report.Sentiment.OverallPositiveRate)
	fmt.Fprintf(&b, "- character_focus_rate: `%s`\n", report.CharacterFocusRate)
	fmt.Fprintf(&b, "- viewer_questions: `%d`\n", report.ViewerCuriosityVolume)
	fmt.Fprintf(&b, "- actionable_insights: `%d`\n\n", report.TotalActionableInsights)

	if dist := report.Sentiment.ToneDistribution; dist != nil && dist.Len() > 0 {
		b.WriteString("## Tone distribution\n\n| Tone | Share |\n| --- | --- |\n")
		for pair := dist.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeMarkdownCell(pair.Key), pair.Value)
		}
		b.WriteString("\n")
	}

	writeCounts(&b, "Top themes", report.TopThemes)
	writeCounts(&b, "Feedback types", report.FeedbackTypeDistribution)

	if s := strings.TrimSpace(narrative); s != "" {
		b.WriteString("## Executive summary\n\n")
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	if len(insights) > 0 {
		b.WriteString("## Actionable insights\n\n")
		for _, it := range insights {
			fmt.Fprintf(&b, "- [ ] %s\n", sanitizeNewlines(it.Insight))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeCounts(b *strings.Builder, title string, pairs []CountPair) {
	if len(pairs) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, p := range pairs {
		fmt.Fprintf(b, "- %s: %d\n", escapeMarkdownInline(p.Label), p.Count)
	}
	b.WriteString("\n")
}

func escapeMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(escapeMarkdownInline(s), "|", `\|`)
}

func sanitizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", " ")
}
