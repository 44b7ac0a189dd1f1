package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: data is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_UpstreamFetch(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordUpstreamFetch(ctx, "people", 12*time.Millisecond, false, nil)
	m.RecordUpstreamFetch(ctx, "people", time.Millisecond, true, nil)
	m.RecordUpstreamFetch(ctx, "films", 30*time.Millisecond, false, errors.New("502"))

	got := collect(t, reader)
	if total := sumInt64(t, got["swapi.fetch.total"]); total != 3 {
		t.Errorf("swapi.fetch.total = %d, want 3", total)
	}
	if errs := sumInt64(t, got["swapi.fetch.errors"]); errs != 1 {
		t.Errorf("swapi.fetch.errors = %d, want 1", errs)
	}
	hist, ok := got["swapi.fetch.duration_ms"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration data is %T", got["swapi.fetch.duration_ms"].Data)
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration count = %d, want 3", count)
	}
}

func TestMetrics_Request(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRequest(ctx, "GET", "GET /api/v1/people/{id}", 200, 5*time.Millisecond)
	m.RecordRequest(ctx, "GET", "GET /api/v1/people/{id}", 404, 2*time.Millisecond)
	m.RecordRateLimited(ctx)

	got := collect(t, reader)
	if total := sumInt64(t, got["http.server.requests"]); total != 2 {
		t.Errorf("http.server.requests = %d, want 2", total)
	}
	sum := got["http.server.requests"].Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 2 {
		t.Errorf("got %d data points, want one per status", len(sum.DataPoints))
	}
	if n := sumInt64(t, got["http.server.rate_limited"]); n != 1 {
		t.Errorf("http.server.rate_limited = %d, want 1", n)
	}
}

func TestMetrics_ObserveCache(t *testing.T) {
	m, reader := newTestMetrics(t)

	hits, misses, entries := int64(3), int64(1), 2
	err := m.ObserveCache("upstream", func() (int64, int64, int) {
		return hits, misses, entries
	})
	if err != nil {
		t.Fatalf("ObserveCache() error = %v", err)
	}

	got := collect(t, reader)
	if h := sumInt64(t, got["cache.hits"]); h != 3 {
		t.Errorf("cache.hits = %d, want 3", h)
	}
	if ms := sumInt64(t, got["cache.misses"]); ms != 1 {
		t.Errorf("cache.misses = %d, want 1", ms)
	}
	gauge, ok := got["cache.entries"].Data.(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 2 {
		t.Errorf("cache.entries = %+v, want 2", got["cache.entries"].Data)
	}

	hits = 10
	got = collect(t, reader)
	if h := sumInt64(t, got["cache.hits"]); h != 10 {
		t.Errorf("cache.hits after update = %d, want 10", h)
	}
}
