package cache

import "time"

// Policy configures a MemoryCache.
type Policy struct {
	// Enabled turns the cache on. A disabled cache stores nothing and
	// reports every lookup as absent without counting a miss.
	Enabled bool

	// DefaultTTL is used by SetDefault.
	// Default: 1 hour
	DefaultTTL time.Duration

	// MaxTTL clamps every TTL passed to Set. Zero means no clamp.
	// Default: 24 hours
	MaxTTL time.Duration
}

// DefaultPolicy returns an enabled policy.
// DefaultTTL: 1 hour, MaxTTL: 24 hours
func DefaultPolicy() Policy {
	return Policy{
		Enabled:    true,
		DefaultTTL: TTLMedium,
		MaxTTL:     TTLLong,
	}
}

// DisabledPolicy returns a policy that turns caching off.
func DisabledPolicy() Policy {
	return Policy{
		Enabled:    false,
		DefaultTTL: TTLMedium,
	}
}

// EffectiveTTL clamps ttl to MaxTTL. Non-positive values pass through
// unchanged so they still produce an expired entry.
func (p Policy) EffectiveTTL(ttl time.Duration) time.Duration {
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
