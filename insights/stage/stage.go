// Package stage runs the pipeline stages over on-disk artifacts. Each stage reads its inputs
// in full, computes, and writes its outputs atomically; a failed stage leaves no partial file.
package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/fileutils"
	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/metrics"
)

// ErrMissingInput is wrapped when a required input artifact does not exist.
var ErrMissingInput = errors.New("missing input artifact")

const jsonIndent = "    "

func requireInput(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is empty", ErrMissingInput)
	}
	if !fileutils.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrMissingInput, path)
	}
	return nil
}

func loggerOr(l *logrus.Logger) *logrus.Logger {
	if l == nil {
		return logging.Discard()
	}
	return l
}

// LoadRecords reads records from a CSV table or, for .json paths, a platform export.
func LoadRecords(path, edgesPath string) ([]insights.Record, error) {
	if err := requireInput(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return insights.ReadRecordsExport(f, edgesPath)
	}
	return insights.ReadRecordsCSV(f)
}

type NormalizeOptions struct {
	InputPath  string
	OutputPath string
	EdgesPath  string
	Logger     *logrus.Logger
}

type NormalizeResult struct {
	Records int
}

// Normalize converts a platform export into the comments table.
func Normalize(opts NormalizeOptions) (NormalizeResult, error) {
	log := loggerOr(opts.Logger)
	recs, err := LoadRecords(opts.InputPath, opts.EdgesPath)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("Normalize: %w", err)
	}
	if len(recs) == 0 {
		log.WithField("input", opts.InputPath).Warn("no posts found in export")
	}

	var buf bytes.Buffer
	if err := insights.WriteRecordsCSV(&buf, recs); err != nil {
		return NormalizeResult{}, fmt.Errorf("Normalize: %w", err)
	}
	if err := fileutils.WriteFileAtomicSameDir(opts.OutputPath, buf.Bytes(), 0o644); err != nil {
		return NormalizeResult{}, fmt.Errorf("Normalize: %w", err)
	}
	log.WithFields(logrus.Fields{"records": len(recs), "output": opts.OutputPath}).Info("normalized records")
	return NormalizeResult{Records: len(recs)}, nil
}

type AnalyzeOptions struct {
	InputPath  string
	OutputPath string
	EdgesPath  string

	Analyzer insights.RecordAnalyzer
	Batch    insights.BatchOptions

	Metrics     *metrics.Collector
	MetricsPath string
	Logger      *logrus.Logger
}

type AnalyzeResult struct {
	Records      int
	Analyzed     int
	Failed       int
	NotAttempted int
	Written      bool
}

// Analyze runs the batch analyzer over the input records and writes the successful results.
// When nothing succeeds the output artifact is left untouched and *insights.EmptyBatchError is
// returned. On cancellation the partial results are still written and ctx.Err() is returned.
func Analyze(ctx context.Context, opts AnalyzeOptions) (AnalyzeResult, error) {
	log := loggerOr(opts.Logger)
	if opts.Analyzer == nil {
		return AnalyzeResult{}, errors.New("Analyze: analyzer is nil")
	}
	recs, err := LoadRecords(opts.InputPath, opts.EdgesPath)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("Analyze: %w", err)
	}
	res := AnalyzeResult{Records: len(recs)}
	if len(recs) == 0 {
		log.WithField("input", opts.InputPath).Warn("no records to analyze")
		return res, &insights.EmptyBatchError{Stage: string(StageAnalyze)}
	}

	batchOpts := opts.Batch
	userObserver := batchOpts.Observer
	batchOpts.Observer = func(o insights.Outcome) {
		entry := log.WithFields(logrus.Fields{
			"post_id": o.Record.ID,
			"index":   o.Index,
			"done":    fmt.Sprintf("%d/%d", o.Done, o.Total),
		})
		if o.Err != nil {
			var ae *insights.AnalysisError
			if errors.As(o.Err, &ae) {
				entry = entry.WithField("kind", ae.Kind)
				if ae.Class != "" {
					entry = entry.WithField("class", ae.Class)
				}
			}
			entry.WithError(o.Err).Warn("skipped record")
		} else {
			entry.Info("analyzed record")
		}
		if opts.Metrics != nil {
			opts.Metrics.ObserveOutcome(o)
		}
		if userObserver != nil {
			userObserver(o)
		}
	}

	batch, runErr := insights.NewBatchAnalyzer(opts.Analyzer, batchOpts).Run(ctx, recs)
	res.Analyzed = len(batch.Results)
	res.Failed = len(batch.Failures)
	res.NotAttempted = batch.NotAttempted
	if runErr != nil {
		log.WithError(runErr).WithField("not_attempted", batch.NotAttempted).Warn("analysis interrupted")
	}

	defer func() {
		if opts.Metrics == nil {
			return
		}
		opts.Metrics.SetNotAttempted(batch.NotAttempted)
		opts.Metrics.StageFinished(string(StageAnalyze), time.Now())
		if opts.MetricsPath != "" {
			if err := opts.Metrics.WriteTextfile(opts.MetricsPath); err != nil {
				log.WithError(err).Warn("write metrics textfile")
			}
		}
	}()

	if len(batch.Results) == 0 {
		log.Warn("no successful analyses; output not written")
		if runErr != nil {
			return res, runErr
		}
		return res, &insights.EmptyBatchError{Stage: string(StageAnalyze)}
	}

	if err := fileutils.WriteJSONFileAtomic(opts.OutputPath, batch.Results, jsonIndent); err != nil {
		return res, fmt.Errorf("Analyze: %w", err)
	}
	res.Written = true
	log.WithFields(logrus.Fields{"analyzed": res.Analyzed, "output": opts.OutputPath}).Info("wrote analysis results")
	return res, runErr
}

// ReadAnalysisResults loads a persisted analysis artifact. Entries that are not objects are
// dropped and reported as a warning.
func ReadAnalysisResults(path string, log *logrus.Logger) ([]insights.AnalysisResult, error) {
	if err := requireInput(path); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	results, skipped, err := insights.DecodeAnalysisResults(b)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		loggerOr(log).WithFields(logrus.Fields{"path": path, "skipped": skipped, "kept": len(results)}).
			Warn("skipped analysis entries that are not objects")
	}
	return results, nil
}

type AggregateOptions struct {
	InputPath  string
	OutputPath string
	Logger     *logrus.Logger
}

// Aggregate computes and writes the KPI report. An empty input produces the sentinel report.
func Aggregate(opts AggregateOptions) (insights.KPIReport, error) {
	log := loggerOr(opts.Logger)
	results, err := ReadAnalysisResults(opts.InputPath, log)
	if err != nil {
		return insights.KPIReport{}, fmt.Errorf("Aggregate: %w", err)
	}
	report := insights.Aggregate(results)
	if report.IsEmpty() {
		log.WithField("input", opts.InputPath).Warn("no analysis results; writing empty report")
	}
	if err := fileutils.WriteJSONFileAtomic(opts.OutputPath, report, jsonIndent); err != nil {
		return insights.KPIReport{}, fmt.Errorf("Aggregate: %w", err)
	}
	log.WithFields(logrus.Fields{"total": report.TotalAnalyzed, "output": opts.OutputPath}).Info("wrote kpi report")
	return report, nil
}

// ReadKPIReport loads a persisted KPI report.
func ReadKPIReport(path string) (insights.KPIReport, error) {
	if err := requireInput(path); err != nil {
		return insights.KPIReport{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return insights.KPIReport{}, err
	}
	var r insights.KPIReport
	if err := json.Unmarshal(b, &r); err != nil {
		return insights.KPIReport{}, &insights.MalformedSourceError{Source: path, Err: err}
	}
	return r, nil
}

type SummarizeOptions struct {
	InputPath  string
	OutputPath string
	Generator  *insights.SummaryGenerator
	Logger     *logrus.Logger
}

// Summarize writes the executive summary. A model failure is not an error here: the failure
// text is written to the artifact and reported through Narrative.Err.
func Summarize(ctx context.Context, opts SummarizeOptions) (insights.Narrative, error) {
	log := loggerOr(opts.Logger)
	if opts.Generator == nil {
		return insights.Narrative{}, errors.New("Summarize: generator is nil")
	}
	report, err := ReadKPIReport(opts.InputPath)
	if err != nil {
		return insights.Narrative{}, fmt.Errorf("Summarize: %w", err)
	}
	n := opts.Generator.Summarize(ctx, report)
	if err := fileutils.WriteFileAtomicSameDir(opts.OutputPath, []byte(n.Text+"\n"), 0o644); err != nil {
		return n, fmt.Errorf("Summarize: %w", err)
	}
	entry := log.WithField("output", opts.OutputPath)
	if n.Failed() {
		entry.WithError(n.Err).Warn("summary generation failed; failure text written")
	} else {
		entry.Info("wrote executive summary")
	}
	return n, nil
}

type ExportOptions struct {
	AnalyzedPath string
	// KPIPath and SummaryPath are optional. A missing KPI report is recomputed.
	KPIPath     string
	SummaryPath string
	Layout      Layout
	Logger      *logrus.Logger
}

type ExportResult struct {
	Insights int
	Comments int
	Files    []string
}

// Export writes the insight checklist, the flat comments table, and the markdown report.
func Export(opts ExportOptions) (ExportResult, error) {
	log := loggerOr(opts.Logger)
	results, err := ReadAnalysisResults(opts.AnalyzedPath, log)
	if err != nil {
		return ExportResult{}, fmt.Errorf("Export: %w", err)
	}

	var report insights.KPIReport
	if opts.KPIPath != "" && fileutils.FileExists(opts.KPIPath) {
		report, err = ReadKPIReport(opts.KPIPath)
		if err != nil {
			return ExportResult{}, fmt.Errorf("Export: %w", err)
		}
	} else {
		report = insights.Aggregate(results)
	}

	var narrative string
	if opts.SummaryPath != "" && fileutils.FileExists(opts.SummaryPath) {
		b, err := os.ReadFile(opts.SummaryPath)
		if err != nil {
			return ExportResult{}, fmt.Errorf("Export: %w", err)
		}
		narrative = string(b)
	}

	items := insights.CollectInsights(results)
	res := ExportResult{Insights: len(items), Comments: len(results)}

	var insightsCSV, commentsCSV bytes.Buffer
	if err := insights.WriteInsightsCSV(&insightsCSV, items); err != nil {
		return ExportResult{}, fmt.Errorf("Export: %w", err)
	}
	if err := insights.WriteCommentsCSV(&commentsCSV, results); err != nil {
		return ExportResult{}, fmt.Errorf("Export: %w", err)
	}

	writes := []struct {
		name string
		data []byte
	}{
		{InsightsCSVFile, insightsCSV.Bytes()},
		{CommentsExportCSVFile, commentsCSV.Bytes()},
		{ReportFile, []byte(insights.RenderReport(report, narrative, items))},
	}
	for _, w := range writes {
		path := opts.Layout.Path(w.name)
		if err := fileutils.WriteFileAtomicSameDir(path, w.data, 0o644); err != nil {
			return res, fmt.Errorf("Export: %w", err)
		}
		res.Files = append(res.Files, path)
	}
	jsonPath := opts.Layout.Path(InsightsJSONFile)
	if err := fileutils.WriteJSONFileAtomic(jsonPath, items, jsonIndent); err != nil {
		return res, fmt.Errorf("Export: %w", err)
	}
	res.Files = append(res.Files, jsonPath)

	log.WithFields(logrus.Fields{"insights": res.Insights, "comments": res.Comments, "dir": opts.Layout.BaseDir}).Info("wrote exports")
	return res, nil
}
