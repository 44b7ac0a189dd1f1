package health

import (
	"context"
	"fmt"
	"runtime"

	"github.com/viniciuslks7/API-Starwars/cache"
	"github.com/viniciuslks7/API-Starwars/resilience"
)

// StatsSource reports cache statistics.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheChecker reports the shared response cache. A disabled cache is
// degraded: the service works but every request reaches the upstream.
type CacheChecker struct {
	source StatsSource
}

// NewCacheChecker creates a cache checker.
func NewCacheChecker(source StatsSource) *CacheChecker {
	return &CacheChecker{source: source}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check reports cache statistics.
func (c *CacheChecker) Check(context.Context) Result {
	st := c.source.Stats()
	details := map[string]any{
		"enabled":  st.Enabled,
		"entries":  st.Entries,
		"hits":     st.Hits,
		"misses":   st.Misses,
		"hit_rate": st.HitRate,
	}
	if !st.Enabled {
		return Degraded("cache disabled").WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries", st.Entries)).WithDetails(details)
}

// BreakerSource reports a circuit breaker's state.
type BreakerSource interface {
	Snapshot() resilience.CircuitSnapshot
}

// UpstreamChecker reports the circuit breaker guarding the upstream API.
// It never calls the upstream itself.
type UpstreamChecker struct {
	breaker BreakerSource
}

// NewUpstreamChecker creates an upstream checker.
func NewUpstreamChecker(breaker BreakerSource) *UpstreamChecker {
	return &UpstreamChecker{breaker: breaker}
}

// Name returns "upstream".
func (u *UpstreamChecker) Name() string { return "upstream" }

// Check maps the breaker state: open is unhealthy, half-open degraded.
func (u *UpstreamChecker) Check(context.Context) Result {
	snap := u.breaker.Snapshot()
	details := map[string]any{
		"circuit":              snap.State.String(),
		"consecutive_failures": snap.Failures,
		"rejected":             snap.Rejected,
	}
	if !snap.LastFailure.IsZero() {
		details["last_failure"] = snap.LastFailure
	}

	switch snap.State {
	case resilience.StateOpen:
		return Unhealthy("upstream circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("upstream recovering").WithDetails(details)
	default:
		return Healthy("ok").WithDetails(details)
	}
}

// MemoryCheckerConfig configures the memory checker.
type MemoryCheckerConfig struct {
	// MaxHeap is the heap size considered full. Zero uses the heap
	// memory obtained from the OS.
	// Default: 0
	MaxHeap uint64

	// WarningThreshold is the heap usage ratio reported as degraded.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the heap usage ratio reported as unhealthy.
	// Default: 0.95
	CriticalThreshold float64
}

// MemoryChecker reports Go heap usage.
type MemoryChecker struct {
	config MemoryCheckerConfig
	read   func(*runtime.MemStats)
}

// NewMemoryChecker creates a memory checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= config.WarningThreshold || config.CriticalThreshold > 1 {
		config.CriticalThreshold = max(0.95, config.WarningThreshold)
	}
	return &MemoryChecker{config: config, read: runtime.ReadMemStats}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string { return "memory" }

// Check compares the live heap with MaxHeap.
func (m *MemoryChecker) Check(context.Context) Result {
	var stats runtime.MemStats
	m.read(&stats)

	limit := m.config.MaxHeap
	if limit == 0 {
		limit = stats.HeapSys
	}
	details := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"heap_sys_bytes":   stats.HeapSys,
		"heap_objects":     stats.HeapObjects,
		"num_gc":           stats.NumGC,
		"goroutines":       runtime.NumGoroutine(),
	}
	if limit == 0 {
		return Healthy("memory stats unavailable").WithDetails(details)
	}

	ratio := float64(stats.HeapAlloc) / float64(limit)
	details["usage_percent"] = ratio * 100
	msg := fmt.Sprintf("heap usage %.1f%%", ratio*100)
	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(msg, ErrCheckFailed).WithDetails(details)
	case ratio >= m.config.WarningThreshold:
		return Degraded(msg).WithDetails(details)
	default:
		return Healthy(msg).WithDetails(details)
	}
}

var (
	_ Checker = (*CacheChecker)(nil)
	_ Checker = (*UpstreamChecker)(nil)
	_ Checker = (*MemoryChecker)(nil)
)
