package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of calls allowed in flight.
	// Default: 10
	MaxConcurrent int

	// MaxWait bounds the wait for a free slot; zero means do not wait.
	// Default: 0
	MaxWait time.Duration
}

// Bulkhead caps concurrent upstream calls so a slow dependency cannot tie
// up every request goroutine.
type Bulkhead struct {
	sem      *semaphore.Weighted
	maxWait  time.Duration
	active   atomic.Int64
	rejected atomic.Int64
}

func NewBulkhead(config BulkheadConfig) *Bulkhead {
	n := config.MaxConcurrent
	if n <= 0 {
		n = 10
	}
	return &Bulkhead{sem: semaphore.NewWeighted(int64(n)), maxWait: config.MaxWait}
}

// Acquire takes a slot or fails with ErrBulkheadFull once MaxWait runs
// out. Cancellation of ctx is returned as ctx.Err(). A nil return must be
// paired with Release.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if !b.sem.TryAcquire(1) {
		if err := b.wait(ctx); err != nil {
			return err
		}
	}
	b.active.Add(1)
	return nil
}

func (b *Bulkhead) wait(ctx context.Context) error {
	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	wctx, cancel := context.WithTimeout(ctx, b.maxWait)
	defer cancel()
	if err := b.sem.Acquire(wctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	return nil
}

func (b *Bulkhead) Release() {
	b.active.Add(-1)
	b.sem.Release(1)
}

// Execute runs op inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

// Active is the number of slots held.
func (b *Bulkhead) Active() int { return int(b.active.Load()) }

// Rejected counts acquisitions that gave up with ErrBulkheadFull.
func (b *Bulkhead) Rejected() int64 { return b.rejected.Load() }
