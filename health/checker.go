package health

import (
	"context"
	"time"
)

// Status grades a component. Values are ordered by severity, so the worst
// of several statuses is their max.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText makes statuses render by name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is one check's verdict. Duration is filled in by the Aggregator.
type Result struct {
	Status   Status
	Message  string
	Details  map[string]any
	Duration time.Duration
	Error    error
}

func Healthy(msg string) Result  { return Result{Status: StatusHealthy, Message: msg} }
func Degraded(msg string) Result { return Result{Status: StatusDegraded, Message: msg} }

// Unhealthy records cause, or ErrCheckFailed when cause is nil.
func Unhealthy(msg string, cause error) Result {
	if cause == nil {
		cause = ErrCheckFailed
	}
	return Result{Status: StatusUnhealthy, Message: msg, Error: cause}
}

// WithDetails returns a copy of r carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker probes one dependency of the service.
//
// Contract:
//   - Check may run concurrently with itself and must return soon after
//     ctx is done.
//   - Failures are reported in the Result, never by panicking.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

type funcChecker struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc turns fn into a Checker called name.
func NewCheckerFunc(name string, fn func(context.Context) Result) Checker {
	return funcChecker{name: name, fn: fn}
}

func (c funcChecker) Name() string                     { return c.name }
func (c funcChecker) Check(ctx context.Context) Result { return c.fn(ctx) }
