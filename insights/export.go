package insights

import (
	"encoding/csv"
	"io"
	"strings"
)

// InsightStatusPending is the initial status of every exported insight.
const InsightStatusPending = "Pending"

// InsightItem is one row of the actionable-insights export.
type InsightItem struct {
	Insight string `json:"insight"`
	Status  string `json:"status"`
}

// CollectInsights flattens actionable insights across results, dropping blanks and exact
// duplicates while keeping first-seen order.
func CollectInsights(results []AnalysisResult) []InsightItem {
	var all []string
	for _, r := range results {
		all = append(all, r.Analysis.ActionableInsights...)
	}
	out := []InsightItem{}
	for _, s := range dedupeStrings(all) {
		out = append(out, InsightItem{Insight: s, Status: InsightStatusPending})
	}
	return out
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// WriteInsightsCSV writes an Insight,Status table.
func WriteInsightsCSV(w io.Writer, items []InsightItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Insight", "Status"}); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Insight, it.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCommentsCSV writes one row per analyzed comment. Themes are joined with "; ".
func WriteCommentsCSV(w io.Writer, results []AnalysisResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Post ID", "Comment", "Tone", "Themes", "Language"}); err != nil {
		return err
	}
	for _, r := range results {
		lang := r.Language
		if lang == "" {
			lang = DetectLanguage(r.Comment)
		}
		row := []string{
			r.PostID,
			r.Comment,
			r.Analysis.Sentiment.OverallTone,
			strings.Join(r.Analysis.ThemesAndTopics, "; "),
			lang,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
