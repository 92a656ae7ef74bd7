package stage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default artifact names inside a base directory.
const (
	CommentsCSVFile       = "comments_data.csv"
	ExportJSONFile        = "export.json"
	AnalyzedJSONFile      = "analyzed_comments.json"
	KPIJSONFile           = "overall_kpi.json"
	SummaryFile           = "executive_summary.txt"
	InsightsCSVFile       = "actionable_insights.csv"
	InsightsJSONFile      = "actionable_insights.json"
	CommentsExportCSVFile = "comments_export.csv"
	ReportFile            = "report.md"
	MetricsFile           = "metrics.prom"
)

// Layout resolves artifact paths under one base directory.
type Layout struct {
	BaseDir string
}

func (l Layout) Path(name string) string {
	return filepath.Join(l.BaseDir, name)
}

// Name identifies a pipeline stage.
type Name string

const (
	StageNormalize Name = "normalize"
	StageAnalyze   Name = "analyze"
	StageAggregate Name = "aggregate"
	StageSummarize Name = "summarize"
	StageExport    Name = "export"
)

// Order is the fixed execution order of the pipeline.
var Order = []Name{StageNormalize, StageAnalyze, StageAggregate, StageSummarize, StageExport}

// Select returns the stages to run. only wins over from; both empty selects every stage.
func Select(from, only string) ([]Name, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	only = strings.ToLower(strings.TrimSpace(only))
	if only != "" {
		for _, n := range Order {
			if string(n) == only {
				return []Name{n}, nil
			}
		}
		return nil, fmt.Errorf("unknown stage %q", only)
	}
	if from == "" {
		return append([]Name(nil), Order...), nil
	}
	for i, n := range Order {
		if string(n) == from {
			return append([]Name(nil), Order[i:]...), nil
		}
	}
	return nil, fmt.Errorf("unknown stage %q", from)
}
