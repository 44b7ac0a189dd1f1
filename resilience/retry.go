package resilience

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call too.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the pause after the first failure.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps every pause.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier scales the pause after each further failure.
	// Default: 2.0
	Multiplier float64

	// Jitter stretches each pause by a random 0-25%.
	Jitter bool

	// RetryIf classifies errors.
	// Default: IsTransient
	RetryIf func(err error) bool

	// OnRetry observes each failure that will be retried, with the pause
	// about to be taken.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs failed calls with capped exponential backoff.
type Retry struct {
	cfg RetryConfig
}

func NewRetry(cfg RetryConfig) *Retry {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = IsTransient
	}
	return &Retry{cfg: cfg}
}

// Execute calls op until it succeeds, returns an error RetryIf rejects,
// or MaxAttempts is reached. The final error is returned unwrapped.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := 0
	for {
		attempt++
		err := op(ctx)
		if err == nil || !r.shouldRetry(attempt, err) {
			return err
		}
		pause := r.Delay(attempt)
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(attempt, err, pause)
		}
		if err := sleep(ctx, pause); err != nil {
			return err
		}
	}
}

func (r *Retry) shouldRetry(attempt int, err error) bool {
	return attempt < r.cfg.MaxAttempts && r.cfg.RetryIf(err)
}

// Delay is the pause after failed attempt n, counting from 1.
func (r *Retry) Delay(n int) time.Duration {
	limit := float64(r.cfg.MaxDelay)
	d := float64(r.cfg.InitialDelay)
	for ; n > 1 && d < limit; n-- {
		d *= r.cfg.Multiplier
	}
	pause := time.Duration(min(d, limit))
	if r.cfg.Jitter && pause >= 4 {
		// #nosec G404 -- timing jitter only.
		pause += time.Duration(rand.Int64N(int64(pause / 4)))
	}
	return pause
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
