package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheStatsFunc reports a point-in-time view of a cache. It is called from
// the metrics collection goroutine.
type CacheStatsFunc func() (hits, misses int64, entries int)

// Metrics records service metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: recording must return quickly and never block on exporters.
// - Errors: recording must not panic; only registration can fail.
type Metrics interface {
	// RecordUpstreamFetch records one upstream resolution of a URL, whether
	// it was served from cache or fetched.
	RecordUpstreamFetch(ctx context.Context, resource string, duration time.Duration, cacheHit bool, err error)

	// RecordRequest records one served HTTP request.
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)

	// RecordRateLimited counts a request rejected by the rate limiter.
	RecordRateLimited(ctx context.Context)

	// ObserveCache registers observable gauges for the named cache.
	ObserveCache(name string, stats CacheStatsFunc) error
}

type metricsImpl struct {
	meter metric.Meter

	upstreamTotal    metric.Int64Counter
	upstreamErrors   metric.Int64Counter
	upstreamDuration metric.Float64Histogram

	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	rateLimited     metric.Int64Counter

	cacheHits    metric.Int64ObservableCounter
	cacheMisses  metric.Int64ObservableCounter
	cacheEntries metric.Int64ObservableGauge
}

// NewMetrics creates the service instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{meter: meter}
	var err error

	if m.upstreamTotal, err = meter.Int64Counter(
		"swapi.fetch.total",
		metric.WithDescription("Upstream URL resolutions, cached or fetched"),
		metric.WithUnit("{fetch}"),
	); err != nil {
		return nil, err
	}
	if m.upstreamErrors, err = meter.Int64Counter(
		"swapi.fetch.errors",
		metric.WithDescription("Failed upstream URL resolutions"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.upstreamDuration, err = meter.Float64Histogram(
		"swapi.fetch.duration_ms",
		metric.WithDescription("Upstream resolution duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.requestTotal, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Served HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.requestDuration, err = meter.Float64Histogram(
		"http.server.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.rateLimited, err = meter.Int64Counter(
		"http.server.rate_limited",
		metric.WithDescription("Requests rejected by the rate limiter"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.cacheHits, err = meter.Int64ObservableCounter(
		"cache.hits",
		metric.WithDescription("Cache hits since start"),
	); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = meter.Int64ObservableCounter(
		"cache.misses",
		metric.WithDescription("Cache misses since start"),
	); err != nil {
		return nil, err
	}
	if m.cacheEntries, err = meter.Int64ObservableGauge(
		"cache.entries",
		metric.WithDescription("Entries currently held, expired included until swept"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordUpstreamFetch(ctx context.Context, resource string, duration time.Duration, cacheHit bool, err error) {
	opt := metric.WithAttributes(
		AttrResource.String(resource),
		AttrCacheHit.Bool(cacheHit),
	)
	m.upstreamTotal.Add(ctx, 1, opt)
	if err != nil {
		m.upstreamErrors.Add(ctx, 1, opt)
	}
	m.upstreamDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.requestTotal.Add(ctx, 1, opt)
	m.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordRateLimited(ctx context.Context) {
	m.rateLimited.Add(ctx, 1)
}

func (m *metricsImpl) ObserveCache(name string, stats CacheStatsFunc) error {
	attrs := metric.WithAttributes(attribute.String("cache.name", name))
	_, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		hits, misses, entries := stats()
		o.ObserveInt64(m.cacheHits, hits, attrs)
		o.ObserveInt64(m.cacheMisses, misses, attrs)
		o.ObserveInt64(m.cacheEntries, int64(entries), attrs)
		return nil
	}, m.cacheHits, m.cacheMisses, m.cacheEntries)
	return err
}
