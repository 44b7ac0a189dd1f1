package resilience

import (
	"math"
	"sync"
	"time"
)

// KeyedRateLimiterConfig configures a KeyedRateLimiter.
type KeyedRateLimiterConfig struct {
	// Limit is the number of requests a key may make per Period.
	// Default: 100
	Limit int

	// Period is the window Limit applies to.
	// Default: 1 minute
	Period time.Duration

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// Decision is the outcome of a KeyedRateLimiter check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long until one more request would be allowed.
	// Zero when Allowed.
	RetryAfter time.Duration
	// Reset is when the key's bucket is full again.
	Reset time.Time
}

// KeyedRateLimiter keeps one token bucket per key, such as a client IP.
// Each bucket refills at Limit/Period and holds at most Limit tokens.
type KeyedRateLimiter struct {
	config KeyedRateLimiterConfig
	rate   float64 // tokens per second

	mu        sync.Mutex
	buckets   map[string]*RateLimiter
	lastSweep time.Time
}

// NewKeyedRateLimiter creates a per-key rate limiter.
func NewKeyedRateLimiter(config KeyedRateLimiterConfig) *KeyedRateLimiter {
	if config.Limit <= 0 {
		config.Limit = 100
	}
	if config.Period <= 0 {
		config.Period = time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &KeyedRateLimiter{
		config:    config,
		rate:      float64(config.Limit) / config.Period.Seconds(),
		buckets:   make(map[string]*RateLimiter),
		lastSweep: config.Now(),
	}
}

// Allow consumes one token from key's bucket.
func (k *KeyedRateLimiter) Allow(key string) Decision {
	k.mu.Lock()
	now := k.config.Now()
	if now.Sub(k.lastSweep) >= k.config.Period {
		k.sweepLocked()
		k.lastSweep = now
	}
	b, ok := k.buckets[key]
	if !ok {
		b = NewRateLimiter(RateLimiterConfig{
			Rate:  k.rate,
			Burst: k.config.Limit,
			Now:   k.config.Now,
		})
		k.buckets[key] = b
	}
	k.mu.Unlock()

	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)

	d := Decision{
		Allowed:   allowed,
		Limit:     k.config.Limit,
		Remaining: int(math.Floor(tokens)),
		Reset:     now.Add(k.secondsFor(float64(k.config.Limit) - tokens)),
	}
	if !allowed {
		d.RetryAfter = k.secondsFor(1 - tokens)
	}
	return d
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

// Limit returns the configured per-period limit.
func (k *KeyedRateLimiter) Limit() int {
	return k.config.Limit
}

// sweepLocked forgets keys whose bucket has refilled completely; they are
// indistinguishable from a new key.
func (k *KeyedRateLimiter) sweepLocked() {
	for key, b := range k.buckets {
		if b.Tokens() >= float64(k.config.Limit) {
			delete(k.buckets, key)
		}
	}
}

func (k *KeyedRateLimiter) secondsFor(tokens float64) time.Duration {
	if tokens <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(tokens / k.rate * float64(time.Second)))
}
