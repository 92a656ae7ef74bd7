package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/fileutils"
	"github.com/theimaginaryfoundation/audience-pulse/insights/metrics"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

// errStopped ends a run early without failing it.
var errStopped = errors.New("pipeline stopped")

type completerFactory func(ctx context.Context, cfg provider.Config) (provider.Completer, error)

func runPipeline(ctx context.Context, l stage.Layout, o runOptions, newCompleter completerFactory, log *logrus.Logger, stdout io.Writer) error {
	stages, err := stage.Select(o.FromStage, o.OnlyStage)
	if err != nil {
		return &configError{err: err}
	}
	if o.Concurrency < 0 || o.Interval < 0 {
		return &configError{err: errors.New("concurrency and interval must be >= 0")}
	}

	var completer provider.Completer
	getCompleter := func() (provider.Completer, error) {
		if completer != nil {
			return completer, nil
		}
		if err := o.Provider.Validate(); err != nil {
			return nil, &configError{err: err}
		}
		c, err := newCompleter(ctx, o.Provider)
		if err != nil {
			return nil, &configError{err: err}
		}
		completer = c
		return c, nil
	}

	start := time.Now()
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := runStage(ctx, s, l, o, getCompleter, log, stdout)
		if errors.Is(err, errStopped) {
			break
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", s, err)
		}
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("pipeline finished")
	return nil
}

func runStage(ctx context.Context, s stage.Name, l stage.Layout, o runOptions, getCompleter func() (provider.Completer, error), log *logrus.Logger, stdout io.Writer) error {
	switch s {
	case stage.StageNormalize:
		in := l.Path(stage.ExportJSONFile)
		if !fileutils.FileExists(in) {
			log.WithField("input", in).Info("no platform export; using existing comments table")
			return nil
		}
		res, err := stage.Normalize(stage.NormalizeOptions{InputPath: in, OutputPath: l.Path(stage.CommentsCSVFile), EdgesPath: o.EdgesPath, Logger: log})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "stage=normalize records=%d\n", res.Records)

	case stage.StageAnalyze:
		c, err := getCompleter()
		if err != nil {
			return err
		}
		opts := stage.AnalyzeOptions{
			InputPath:  l.Path(stage.CommentsCSVFile),
			OutputPath: l.Path(stage.AnalyzedJSONFile),
			EdgesPath:  o.EdgesPath,
			Analyzer:   insights.NewAnalyzer(c),
			Batch:      insights.BatchOptions{Concurrency: o.Concurrency, Interval: o.Interval},
			Logger:     log,
		}
		if o.Interval == 0 {
			opts.Batch.Interval = -1
		}
		if o.Metrics {
			opts.Metrics = metrics.NewCollector()
			opts.MetricsPath = l.Path(stage.MetricsFile)
		}
		res, err := stage.Analyze(ctx, opts)
		fmt.Fprintf(stdout, "stage=analyze records=%d analyzed=%d failed=%d not_attempted=%d written=%t\n",
			res.Records, res.Analyzed, res.Failed, res.NotAttempted, res.Written)
		var empty *insights.EmptyBatchError
		if errors.As(err, &empty) {
			if !fileutils.FileExists(opts.OutputPath) {
				log.Warn("nothing analyzed and no prior results; stopping")
				return errStopped
			}
			log.Warn("nothing analyzed; continuing with prior results")
			return nil
		}
		return err

	case stage.StageAggregate:
		report, err := stage.Aggregate(stage.AggregateOptions{InputPath: l.Path(stage.AnalyzedJSONFile), OutputPath: l.Path(stage.KPIJSONFile), Logger: log})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "stage=aggregate total=%d positive_rate=%s\n", report.TotalAnalyzed, report.Sentiment.OverallPositiveRate)

	case stage.StageSummarize:
		c, err := getCompleter()
		if err != nil {
			return err
		}
		n, err := stage.Summarize(ctx, stage.SummarizeOptions{
			InputPath:  l.Path(stage.KPIJSONFile),
			OutputPath: l.Path(stage.SummaryFile),
			Generator:  insights.NewSummaryGenerator(c),
			Logger:     log,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "stage=summarize summary_failed=%t\n", n.Failed())

	case stage.StageExport:
		res, err := stage.Export(stage.ExportOptions{
			AnalyzedPath: l.Path(stage.AnalyzedJSONFile),
			KPIPath:      l.Path(stage.KPIJSONFile),
			SummaryPath:  l.Path(stage.SummaryFile),
			Layout:       l,
			Logger:       log,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "stage=export insights=%d comments=%d\n", res.Insights, res.Comments)
	}
	return nil
}
