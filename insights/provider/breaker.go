package provider

import (
	"context"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
)

// ErrBreakerOpen is returned without calling the service while the breaker is open.
var ErrBreakerOpen = errors.New("provider: circuit breaker open")

// WithBreaker wraps next so that after threshold consecutive service failures further calls
// fail fast for delay. A fast-failed call is still a completed attempt for the caller; it is
// never replayed. threshold <= 0 returns next unchanged.
func WithBreaker(next Completer, threshold int, delay time.Duration) Completer {
	if threshold <= 0 {
		return next
	}
	if delay <= 0 {
		delay = 30 * time.Second
	}
	cb := circuitbreaker.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool {
			// Cancellation says nothing about the service's health.
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}).
		WithFailureThreshold(uint(threshold)).
		WithDelay(delay).
		Build()
	return &breakerCompleter{next: next, cb: cb}
}

type breakerCompleter struct {
	next Completer
	cb   circuitbreaker.CircuitBreaker[string]
}

func (b *breakerCompleter) Complete(ctx context.Context, req Request) (string, error) {
	out, err := failsafe.With[string](b.cb).Get(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "", ErrBreakerOpen
	}
	return out, err
}
