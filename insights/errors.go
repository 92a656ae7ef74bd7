package insights

import (
	"fmt"

	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

// MalformedSourceError reports an input artifact that cannot be parsed at all.
// Ingestion stops and nothing is emitted.
type MalformedSourceError struct {
	Source string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("malformed source: %v", e.Err)
	}
	return fmt.Sprintf("malformed source %s: %v", e.Source, e.Err)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }

// AnalysisErrorKind distinguishes the two ways a single record's analysis can fail.
type AnalysisErrorKind string

const (
	MalformedOutput AnalysisErrorKind = "malformed_output"
	ServiceFailure  AnalysisErrorKind = "service_failure"
)

// AnalysisError is local to one record: the record is dropped and the batch continues.
type AnalysisError struct {
	Kind   AnalysisErrorKind
	PostID string
	// Class is set for ServiceFailure.
	Class provider.FailureClass
	Err   error
}

func (e *AnalysisError) Error() string {
	if e.Kind == ServiceFailure && e.Class != "" {
		return fmt.Sprintf("analyze %s: %s (%s): %v", e.PostID, e.Kind, e.Class, e.Err)
	}
	return fmt.Sprintf("analyze %s: %s: %v", e.PostID, e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// EmptyBatchError reports a stage that produced nothing. It is surfaced to the operator but
// never fatal; downstream stages handle empty input.
type EmptyBatchError struct {
	Stage string
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("%s: empty batch", e.Stage)
}
