package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys shared by the HTTP server and the upstream client.
const (
	AttrResource       = attribute.Key("swapi.resource")
	AttrUpstreamURL    = attribute.Key("swapi.url")
	AttrCacheHit       = attribute.Key("cache.hit")
	AttrUpstreamStatus = attribute.Key("swapi.status")
	AttrError          = attribute.Key("error")
)

// Tracer starts and finishes spans with the service's conventions:
// spans are internal unless opts say otherwise, and a finished span
// carries an Ok or Error status.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - EndSpan never panics, even for a span from a no-op provider.
type Tracer interface {
	StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	trace.Tracer
}

func newTracer(t trace.Tracer) Tracer { return otelTracer{t} }

// NewTracer adapts t, typically one from a test provider.
func NewTracer(t trace.Tracer) Tracer { return newTracer(t) }

func (t otelTracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	// Later options win, so callers can override the kind.
	return t.Start(ctx, name, append([]trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}, opts...)...)
}

func (t otelTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetAttributes(AttrError.Bool(true))
	span.SetStatus(codes.Error, err.Error())
}
