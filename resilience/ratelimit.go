package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is the steady-state allowance in calls per second.
	// Default: 100
	Rate float64

	// Burst is how many calls may go through back to back.
	// Default: 10
	Burst int

	// WaitOnLimit makes Execute queue for a token instead of failing.
	WaitOnLimit bool

	// MaxWait is the longest Wait will queue.
	// Default: 1s
	MaxWait time.Duration

	// Now is the clock.
	// Default: time.Now
	Now func() time.Time
}

// RateLimiter paces calls with a token bucket that starts full.
type RateLimiter struct {
	lim     *rate.Limiter
	wait    bool
	maxWait time.Duration
	now     func() time.Time
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &RateLimiter{
		lim:     rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
		wait:    config.WaitOnLimit,
		maxWait: config.MaxWait,
		now:     config.Now,
	}
}

// Allow spends a token if one is available.
func (rl *RateLimiter) Allow() bool {
	return rl.lim.AllowN(rl.now(), 1)
}

// Wait reserves a token and sleeps until it is due. A reservation further
// out than MaxWait is given back and ErrRateLimitExceeded returned.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	now := rl.now()
	res := rl.lim.ReserveN(now, 1)
	if !res.OK() {
		return ErrRateLimitExceeded
	}
	delay := res.DelayFrom(now)
	if delay > rl.maxWait {
		res.CancelAt(now)
		return ErrRateLimitExceeded
	}
	if err := sleep(ctx, delay); err != nil {
		res.Cancel()
		return err
	}
	return nil
}

// Execute runs op after taking a token, queueing when WaitOnLimit is set.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	switch {
	case rl.wait:
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	case !rl.Allow():
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// Tokens is the current bucket level.
func (rl *RateLimiter) Tokens() float64 {
	return rl.lim.TokensAt(rl.now())
}
