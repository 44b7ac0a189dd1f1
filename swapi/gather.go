package swapi

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of operation Index in a Gather call.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// Gather runs fn for every index in [0, n) with at most limit operations in
// flight (limit <= 0 means unbounded). Every operation runs to completion:
// one failure never cancels its siblings. Outcomes are returned in index
// order regardless of completion order.
func Gather[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], n)
	if n == 0 {
		return outcomes
	}

	// A plain Group: WithContext would cancel siblings on the first error.
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range n {
		g.Go(func() error {
			v, err := fn(ctx, i)
			outcomes[i] = Outcome[T]{Index: i, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Successes returns the values of the successful outcomes, preserving order.
func Successes[T any](outcomes []Outcome[T]) []T {
	out := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			out = append(out, o.Value)
		}
	}
	return out
}
