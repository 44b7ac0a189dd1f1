package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TTL bands used by callers to pick an expiry for a value.
const (
	// TTLShort suits volatile values.
	TTLShort = 5 * time.Minute
	// TTLMedium suits collections and pages, which may grow.
	TTLMedium = time.Hour
	// TTLLong suits single-item detail payloads, which rarely change.
	TTLLong = 24 * time.Hour
)

// Key namespaces. Every network-backed key lives under NamespaceUpstream;
// whole-resource aggregates live under NamespaceAll so they never shadow
// the per-page entries they are built from.
const (
	NamespaceUpstream = "upstream"
	NamespaceAll      = "all"
)

// Cache is a keyed store of byte values with absolute expiry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: operations are total; a disabled cache short-circuits effects.
// - Expiry: Get never returns an entry whose expiry is not in the future.
type Cache interface {
	// Get retrieves a live value. Returns (nil, false) on miss, expiry or
	// when the cache is disabled.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value, replacing any existing entry. A TTL <= 0 stores
	// an already-expired entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes a value and reports whether one was present.
	Delete(ctx context.Context, key string) bool
}

// Store extends Cache with bulk maintenance and statistics.
type Store interface {
	Cache

	// SetDefault stores a value with the store's default TTL.
	SetDefault(ctx context.Context, key string, value []byte)

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) int

	// ClearPrefix removes every entry whose key starts with prefix.
	ClearPrefix(ctx context.Context, prefix string) int

	// CleanupExpired removes every entry that has already expired.
	CleanupExpired(ctx context.Context) int

	// Stats reports hit/miss counters and the current entry count.
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
	HitRate    float64       `json:"hit_rate"`
	Entries    int           `json:"entries"`
	Enabled    bool          `json:"enabled"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// HitRate returns hits/(hits+misses) as a percentage, or 0 when there
// were no accesses.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// MakeKey joins parts with ":" so the same logical value always maps to
// the same key.
func MakeKey(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}

// UpstreamKey is the key under which a fetched URL body is cached.
func UpstreamKey(url string) string {
	return MakeKey(NamespaceUpstream, url)
}

// AggregateKey is the key under which every item of a resource is cached.
func AggregateKey(resource string) string {
	return MakeKey(NamespaceAll, resource)
}
