// Package provider is the boundary to the external model-calling service. Each backend
// implements Completer: one request in, raw response text out.
package provider

import (
	"context"
	"errors"
	"strings"
)

// Format is the output constraint requested from the model.
type Format int

const (
	// FormatText requests free text.
	FormatText Format = iota
	// FormatJSONObject requests a single JSON object.
	FormatJSONObject
)

// Request is a single completion call.
type Request struct {
	System string
	User   string
	Format Format

	// Schema optionally narrows FormatJSONObject to a strict JSON schema on backends
	// that support it. Backends without schema support fall back to plain JSON mode.
	Schema     map[string]any
	SchemaName string
}

// Completer sends one request to a model and returns its raw text output.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrEmptyResponse is returned when the service answers without any text output.
var ErrEmptyResponse = errors.New("provider: empty response")

// FailureClass buckets a service error for logs and metrics.
type FailureClass string

const (
	FailureRateLimit FailureClass = "rate_limit"
	FailureServer    FailureClass = "server"
	FailureCanceled  FailureClass = "canceled"
	FailureBreaker   FailureClass = "breaker_open"
	FailureOther     FailureClass = "other"
)

// Classify inspects a service error. It never triggers a retry; callers use it for reporting.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.Is(err, ErrBreakerOpen):
		return FailureBreaker
	case isRateLimitError(err):
		return FailureRateLimit
	case isServerError(err):
		return FailureServer
	default:
		return FailureOther
	}
}

func isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource_exhausted")
}

func isServerError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error") ||
		strings.Contains(errStr, "overloaded")
}
