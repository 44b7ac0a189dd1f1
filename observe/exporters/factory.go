// Package exporters builds OpenTelemetry exporters from configuration names.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	ErrUnknown    = errors.New("exporters: unknown exporter")
	ErrNoEndpoint = errors.New("exporters: OTLP endpoint not set")
)

const sharedEndpointVar = "OTEL_EXPORTER_OTLP_ENDPOINT"

// NewTracingExporter returns the span exporter called name: "stdout",
// "otlp", or "none" (and "") for an exporter that discards spans.
//
// otlp talks gRPC and fails fast with ErrNoEndpoint unless
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT or OTEL_EXPORTER_OTLP_ENDPOINT is set.
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "", "none":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout), stdouttrace.WithPrettyPrint())
	case "otlp":
		if err := requireEndpoint("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	}
	return nil, fmt.Errorf("%w: tracing %q", ErrUnknown, name)
}

// NewMetricsReader returns the reader called name: "stdout", "otlp",
// "prometheus", or "none" (and "").
//
// The prometheus reader is pull based and registers its collector on reg,
// or on the global registerer when reg is nil. The others push through a
// periodic reader.
func NewMetricsReader(ctx context.Context, name string, reg promclient.Registerer) (sdkmetric.Reader, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch name {
	case "", "none":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
	case "stdout":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
	case "otlp":
		if err := requireEndpoint("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		exp, err = otlpmetricgrpc.New(ctx)
	case "prometheus":
		var opts []prometheus.Option
		if reg != nil {
			opts = append(opts, prometheus.WithRegisterer(reg))
		}
		pull, err := prometheus.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("exporters: prometheus: %w", err)
		}
		return pull, nil
	default:
		return nil, fmt.Errorf("%w: metrics %q", ErrUnknown, name)
	}
	if err != nil {
		return nil, fmt.Errorf("exporters: %s metrics: %w", name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

func requireEndpoint(signalVar string) error {
	if os.Getenv(signalVar) != "" || os.Getenv(sharedEndpointVar) != "" {
		return nil
	}
	return fmt.Errorf("%w: set %s or %s", ErrNoEndpoint, sharedEndpointVar, signalVar)
}
