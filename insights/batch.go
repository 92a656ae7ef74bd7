package insights

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the minimum spacing between the starts of consecutive analysis calls.
const DefaultInterval = time.Second

// RecordAnalyzer analyzes a single record.
type RecordAnalyzer interface {
	Analyze(ctx context.Context, rec Record) (AnalysisResult, error)
}

// Outcome describes one finished record. It is delivered to BatchOptions.Observer.
type Outcome struct {
	Index    int
	Done     int
	Total    int
	Record   Record
	Err      error
	Duration time.Duration
}

type BatchOptions struct {
	// Concurrency caps in-flight calls. Values <= 0 mean 1.
	Concurrency int
	// Interval is the pacing floor between call starts. Zero means DefaultInterval; negative disables pacing.
	Interval time.Duration
	// Observer is called once per attempted record, serialized.
	Observer func(Outcome)
}

// RecordFailure is a record that was attempted and dropped.
type RecordFailure struct {
	Index  int
	PostID string
	Err    error
}

// BatchResult holds successful results in input order, plus everything that did not make it.
type BatchResult struct {
	Results      []AnalysisResult
	Failures     []RecordFailure
	NotAttempted int
}

// BatchAnalyzer runs a RecordAnalyzer over every record at most once. Per-record failures are
// dropped and recorded; the batch only stops early on cancellation.
type BatchAnalyzer struct {
	analyzer RecordAnalyzer
	opts     BatchOptions
}

func NewBatchAnalyzer(a RecordAnalyzer, opts BatchOptions) *BatchAnalyzer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	return &BatchAnalyzer{analyzer: a, opts: opts}
}

type slotState int

const (
	slotPending slotState = iota
	slotOK
	slotFailed
)

// Run returns the partial result together with ctx.Err() when the context ends first.
func (b *BatchAnalyzer) Run(ctx context.Context, records []Record) (BatchResult, error) {
	total := len(records)
	results := make([]AnalysisResult, total)
	errs := make([]error, total)
	states := make([]slotState, total)

	var (
		mu   sync.Mutex
		done int
	)
	observe := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		done++
		o.Done = done
		if b.opts.Observer != nil {
			b.opts.Observer(o)
		}
	}

	var g errgroup.Group
	g.SetLimit(b.opts.Concurrency)

	var (
		stopErr   error
		lastStart time.Time
	)
dispatch:
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		if i > 0 && b.opts.Interval > 0 {
			if wait := b.opts.Interval - time.Since(lastStart); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					stopErr = ctx.Err()
					break dispatch
				case <-timer.C:
				}
			}
		}

		g.Go(func() error {
			// The slot may free up after cancellation; skip rather than start a doomed call.
			if ctx.Err() != nil {
				return nil
			}
			start := time.Now()
			res, err := b.analyzer.Analyze(ctx, rec)
			if err != nil {
				errs[i] = err
				states[i] = slotFailed
			} else {
				results[i] = res
				states[i] = slotOK
			}
			observe(Outcome{Index: i, Total: total, Record: rec, Err: err, Duration: time.Since(start)})
			return nil
		})
		lastStart = time.Now()
	}
	_ = g.Wait()

	out := BatchResult{Results: []AnalysisResult{}}
	for i := range records {
		switch states[i] {
		case slotOK:
			out.Results = append(out.Results, results[i])
		case slotFailed:
			out.Failures = append(out.Failures, RecordFailure{Index: i, PostID: records[i].ID, Err: errs[i]})
		default:
			out.NotAttempted++
		}
	}
	if stopErr == nil && out.NotAttempted > 0 {
		stopErr = ctx.Err()
	}
	return out, stopErr
}
