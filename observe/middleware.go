package observe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderResponseTime carries the time spent before the response headers
// were written, formatted as "12.34ms".
const HeaderResponseTime = "X-Response-Time"

// unmatchedRoute labels requests that never reached a registered pattern.
const unmatchedRoute = "unmatched"

type routeKey struct{}

type routeHolder struct {
	pattern string
}

// SetRoute records the matched mux pattern for the request in ctx, so the
// outer middleware can label metrics and spans without per-path cardinality.
// It is a no-op outside Middleware.
func SetRoute(ctx context.Context, pattern string) {
	if h, ok := ctx.Value(routeKey{}).(*routeHolder); ok {
		h.pattern = pattern
	}
}

// Middleware wraps HTTP handlers with tracing, metrics, and access logging.
//
// Contract:
//   - Concurrency: the returned handler is safe for concurrent use.
//   - Context: incoming trace context is extracted from request headers.
//   - Errors: handler panics are not recovered here.
type Middleware struct {
	tracer     Tracer
	metrics    Metrics
	logger     Logger
	propagator propagation.TextMapPropagator
}

// NewMiddleware creates a Middleware with the given components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) *Middleware {
	return NewMiddleware(obs.Tracer(), obs.Metrics(), obs.Logger())
}

// Handler wraps next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		holder := &routeHolder{}
		ctx := m.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = context.WithValue(ctx, routeKey{}, holder)
		ctx, span := m.tracer.StartSpan(ctx, "HTTP "+r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)

		rec := &statusRecorder{ResponseWriter: w, start: start}
		next.ServeHTTP(rec, r.WithContext(ctx))
		if !rec.wroteHeader {
			// Nothing written: net/http will send an implicit 200.
			rec.WriteHeader(http.StatusOK)
		}

		duration := time.Since(start)
		route := holder.pattern
		if route == "" {
			route = unmatchedRoute
		}

		span.SetName("HTTP " + r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", rec.status),
		)
		var spanErr error
		if rec.status >= http.StatusInternalServerError {
			spanErr = fmt.Errorf("http status %d", rec.status)
		}
		m.tracer.EndSpan(span, spanErr)

		m.metrics.RecordRequest(ctx, r.Method, route, rec.status, duration)

		fields := []Field{
			String("method", r.Method),
			String("path", r.URL.Path),
			String("route", route),
			Int("status", rec.status),
			Int("bytes", rec.bytes),
			Float64("duration_ms", float64(duration.Microseconds())/1000),
		}
		if rec.status >= http.StatusInternalServerError {
			m.logger.Error(ctx, "request failed", fields...)
		} else {
			m.logger.Info(ctx, "request completed", fields...)
		}
	})
}

// statusRecorder captures the response status and size.
type statusRecorder struct {
	http.ResponseWriter
	start       time.Time
	status      int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = code
	elapsed := time.Since(r.start)
	r.Header().Set(HeaderResponseTime, fmt.Sprintf("%.2fms", float64(elapsed.Microseconds())/1000))
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		if !r.wroteHeader {
			r.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}
