package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is an in-process Store. Entries expire lazily on access and
// can be swept with CleanupExpired; nothing is evicted otherwise.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	policy  Policy
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache(policy Policy, opts ...Option) *MemoryCache {
	if policy.DefaultTTL <= 0 {
		policy.DefaultTTL = TTLMedium
	}
	c := &MemoryCache{
		entries: make(map[string]*cacheEntry),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or expiry.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if !c.policy.Enabled {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it.
		if current, ok := c.entries[key]; ok && current == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry.value, true
}

// Peek is Get without touching the hit and miss counters.
func (c *MemoryCache) Peek(_ context.Context, key string) ([]byte, bool) {
	if !c.policy.Enabled {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || entry.expired(c.now()) {
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key. A TTL <= 0 stores an entry that is already
// expired, so it also invalidates any previous value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if !c.policy.Enabled {
		return
	}

	entry := &cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.policy.EffectiveTTL(ttl)),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// SetDefault stores value with the policy's default TTL.
func (c *MemoryCache) SetDefault(ctx context.Context, key string, value []byte) {
	c.Set(ctx, key, value, c.policy.DefaultTTL)
}

// Delete removes a value from the cache and reports whether it existed.
func (c *MemoryCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*cacheEntry)
	return n
}

// ClearPrefix removes every entry whose key has the exact string prefix.
func (c *MemoryCache) ClearPrefix(_ context.Context, prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// CleanupExpired removes every expired entry.
func (c *MemoryCache) CleanupExpired(_ context.Context) int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Enabled reports whether the cache stores values.
func (c *MemoryCache) Enabled() bool {
	return c.policy.Enabled
}

// Stats returns the current counters.
func (c *MemoryCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:       hits,
		Misses:     misses,
		HitRate:    HitRate(hits, misses),
		Entries:    c.Len(),
		Enabled:    c.policy.Enabled,
		DefaultTTL: c.policy.DefaultTTL,
	}
}

// Ensure MemoryCache implements Store
var _ Store = (*MemoryCache)(nil)
