package resilience

import (
	"context"
	"errors"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when no token is available in time.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when no concurrency slot frees up in time.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an attempt outlives its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// temporary is implemented by errors that know whether a retry can help.
type temporary interface {
	Temporary() bool
}

// IsTransient reports whether err is worth retrying and counts against a
// circuit breaker. Errors with a Temporary method decide for themselves.
// Cancellation and rejections by this package are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, ErrCircuitOpen),
		errors.Is(err, ErrBulkheadFull),
		errors.Is(err, ErrRateLimitExceeded):
		return false
	}
	return true
}
