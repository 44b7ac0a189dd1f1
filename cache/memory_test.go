package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCache_GetSetDelete(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	// Test Get on empty cache
	val, ok := cache.Get(ctx, "nonexistent")
	if ok {
		t.Error("Get on empty cache should return ok=false")
	}
	if val != nil {
		t.Error("Get on empty cache should return nil value")
	}

	key := "upstream:https://swapi.dev/api/people/1/"
	value := []byte(`{"name":"Luke Skywalker"}`)
	cache.Set(ctx, key, value, 5*time.Minute)

	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Error("Get after Set should return ok=true")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}

	if !cache.Delete(ctx, key) {
		t.Error("Delete of existing key should return true")
	}

	val, ok = cache.Get(ctx, key)
	if ok {
		t.Error("Get after Delete should return ok=false")
	}
	if val != nil {
		t.Error("Get after Delete should return nil value")
	}

	if cache.Delete(ctx, "nonexistent") {
		t.Error("Delete of missing key should return false")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(DefaultPolicy(), WithClock(clock.Now))
	ctx := context.Background()

	cache.Set(ctx, "expiring-key", []byte("v"), time.Minute)

	if _, ok := cache.Get(ctx, "expiring-key"); !ok {
		t.Fatal("Get before expiry should return ok=true")
	}

	clock.Advance(time.Minute)

	if _, ok := cache.Get(ctx, "expiring-key"); ok {
		t.Error("Get at expiry should return ok=false")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (expired entry purged on access)", cache.Len())
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats() hits=%d misses=%d, want 1 and 1", stats.Hits, stats.Misses)
	}
}

func TestMemoryCache_NonPositiveTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewMemoryCache(DefaultPolicy())
			ctx := context.Background()

			cache.Set(ctx, "k", []byte("old"), time.Hour)
			cache.Set(ctx, "k", []byte("new"), tt.ttl)

			if v, ok := cache.Get(ctx, "k"); ok {
				t.Errorf("Get after Set(ttl=%v) = %q, want absent", tt.ttl, v)
			}
		})
	}
}

func TestMemoryCache_SetOverwrite(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	cache.Set(ctx, "overwrite-key", []byte("value1"), 5*time.Minute)
	cache.Set(ctx, "overwrite-key", []byte("value2"), 5*time.Minute)

	got, ok := cache.Get(ctx, "overwrite-key")
	if !ok {
		t.Fatal("Get should return ok=true")
	}
	if string(got) != "value2" {
		t.Errorf("Get returned %q, want %q", got, "value2")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestMemoryCache_SetDefault(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(Policy{Enabled: true, DefaultTTL: 10 * time.Second}, WithClock(clock.Now))
	ctx := context.Background()

	cache.SetDefault(ctx, "k", []byte("v"))

	clock.Advance(9 * time.Second)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Error("Get before default TTL should hit")
	}

	clock.Advance(time.Second)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Get after default TTL should miss")
	}
}

func TestMemoryCache_MaxTTLClamp(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(Policy{Enabled: true, DefaultTTL: time.Minute, MaxTTL: time.Hour}, WithClock(clock.Now))
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), 48*time.Hour)
	clock.Advance(time.Hour)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("TTL above MaxTTL should be clamped")
	}
}

func TestMemoryCache_Disabled(t *testing.T) {
	cache := NewMemoryCache(DisabledPolicy())
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), time.Hour)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("disabled cache should never report a hit")
	}

	stats := cache.Stats()
	if stats.Misses != 0 {
		t.Errorf("Misses = %d, want 0 for a disabled cache", stats.Misses)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0 for a disabled cache", stats.Entries)
	}
	if stats.Enabled {
		t.Error("Stats().Enabled = true, want false")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		cache.Set(ctx, k, []byte(k), time.Hour)
	}

	if got := cache.Clear(ctx); got != len(keys) {
		t.Errorf("Clear() = %d, want %d", got, len(keys))
	}
	for _, k := range keys {
		if _, ok := cache.Get(ctx, k); ok {
			t.Errorf("Get(%q) after Clear should miss", k)
		}
	}
	if got := cache.Clear(ctx); got != 0 {
		t.Errorf("second Clear() = %d, want 0", got)
	}
}

func TestMemoryCache_ClearPrefix(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	keep := []string{"all:people", "all:films", "upstreamish", "x:upstream:1"}
	drop := []string{"upstream:a", "upstream:b", "upstream:"}
	for _, k := range append(append([]string{}, keep...), drop...) {
		cache.Set(ctx, k, []byte(k), time.Hour)
	}

	if got := cache.ClearPrefix(ctx, "upstream:"); got != len(drop) {
		t.Errorf("ClearPrefix() = %d, want %d", got, len(drop))
	}
	for _, k := range drop {
		if _, ok := cache.Get(ctx, k); ok {
			t.Errorf("Get(%q) should miss after ClearPrefix", k)
		}
	}
	for _, k := range keep {
		if _, ok := cache.Get(ctx, k); !ok {
			t.Errorf("Get(%q) should still hit after ClearPrefix", k)
		}
	}
}

func TestMemoryCache_ClearPrefix_NotGlob(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	cache.Set(ctx, "all:people", []byte("x"), time.Hour)

	if got := cache.ClearPrefix(ctx, "all:*"); got != 0 {
		t.Errorf("ClearPrefix(glob) = %d, want 0", got)
	}
}

func TestMemoryCache_CleanupExpired(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(DefaultPolicy(), WithClock(clock.Now))
	ctx := context.Background()

	cache.Set(ctx, "short-1", []byte("x"), time.Minute)
	cache.Set(ctx, "short-2", []byte("x"), time.Minute)
	cache.Set(ctx, "long", []byte("x"), time.Hour)

	clock.Advance(2 * time.Minute)

	if got := cache.CleanupExpired(ctx); got != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}

	// Sweeping does not touch counters
	stats := cache.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Stats() hits=%d misses=%d, want 0 and 0", stats.Hits, stats.Misses)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	if got := cache.Stats().HitRate; got != 0 {
		t.Errorf("HitRate with no accesses = %v, want 0", got)
	}

	cache.Set(ctx, "k", []byte("v"), time.Hour)
	for i := 0; i < 3; i++ {
		cache.Get(ctx, "k")
	}
	cache.Get(ctx, "missing")

	stats := cache.Stats()
	if stats.Hits != 3 {
		t.Errorf("Hits = %d, want 3", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.HitRate != 75 {
		t.Errorf("HitRate = %v, want 75", stats.HitRate)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(DefaultPolicy())
	ctx := context.Background()

	const numGoroutines = 50
	const opsPerGoroutine = 600

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				key := fmt.Sprintf("key-%d", j%10)
				switch j % 6 {
				case 0:
					cache.Set(ctx, key, []byte("v"), 5*time.Minute)
				case 1, 2:
					cache.Get(ctx, key)
				case 3:
					cache.Delete(ctx, key)
				case 4:
					cache.ClearPrefix(ctx, "key-1")
				case 5:
					cache.CleanupExpired(ctx)
				}
			}
		}(i)
	}

	wg.Wait()

	stats := cache.Stats()
	if stats.Hits+stats.Misses != numGoroutines*opsPerGoroutine/3 {
		t.Errorf("hits+misses = %d, want %d", stats.Hits+stats.Misses, numGoroutines*opsPerGoroutine/3)
	}
}
