package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/viniciuslks7/API-Starwars/observe/exporters"
)

// Config selects what an Observer sets up. A disabled subsystem is
// replaced with a no-op implementation.
type Config struct {
	ServiceName string
	Version     string
	Environment string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

type TracingConfig struct {
	Enabled bool
	// Exporter is one of TracingExporters.
	Exporter string
	// SamplePct is the share of root spans kept, 0 to 1. Child spans
	// follow their parent.
	SamplePct float64
}

type MetricsConfig struct {
	Enabled bool
	// Exporter is one of MetricsExporters. "prometheus" also enables
	// Observer.MetricsHandler.
	Exporter string
}

type LoggingConfig struct {
	Enabled bool
	Level   string
	Format  string
}

// Validate checks option values of the enabled subsystems only.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Tracing.Enabled && (c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1) {
		return fmt.Errorf("%w: %g", ErrInvalidSamplePct, c.Tracing.SamplePct)
	}
	checks := []struct {
		on      bool
		value   string
		allowed []string
		err     error
	}{
		{c.Tracing.Enabled, c.Tracing.Exporter, TracingExporters, ErrInvalidTracingExporter},
		{c.Metrics.Enabled, c.Metrics.Exporter, MetricsExporters, ErrInvalidMetricsExporter},
		{c.Logging.Enabled, c.Logging.Level, LogLevels, ErrInvalidLogLevel},
		{c.Logging.Enabled, c.Logging.Format, LogFormats, ErrInvalidLogFormat},
	}
	for _, chk := range checks {
		if chk.on && !slices.Contains(chk.allowed, chk.value) {
			return fmt.Errorf("%w: %q", chk.err, chk.value)
		}
	}
	return nil
}

// Observer bundles the telemetry of one service: spans, instruments and
// a structured logger.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Shutdown flushes pending spans and metrics within ctx and joins
//     the errors of every provider.
type Observer interface {
	Tracer() Tracer
	Meter() metric.Meter
	Metrics() Metrics
	Logger() Logger
	// MetricsHandler serves the private Prometheus registry, or 404 when
	// the prometheus exporter is not in use.
	MetricsHandler() http.Handler
	Shutdown(ctx context.Context) error
}

type observer struct {
	tracer   Tracer
	meter    metric.Meter
	metrics  Metrics
	logger   Logger
	registry *prometheus.Registry
	// closers flush and stop the SDK providers, in start order.
	closers []func(context.Context) error
}

// NewObserver validates cfg and starts the enabled subsystems. The SDK
// providers it creates are also installed as the otel globals.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	o := &observer{
		tracer: newTracer(tracenoop.NewTracerProvider().Tracer(cfg.ServiceName)),
		meter:  noop.NewMeterProvider().Meter(cfg.ServiceName),
		logger: NewNopLogger(),
	}
	if cfg.Tracing.Enabled {
		if err := o.startTracing(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if err := o.startMetrics(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	if o.metrics, err = NewMetrics(o.meter); err != nil {
		return nil, fmt.Errorf("observe: instruments: %w", err)
	}
	if cfg.Logging.Enabled {
		l, err := NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return nil, err
		}
		o.logger = l.With(String("service", cfg.ServiceName), String("version", cfg.Version))
	}
	return o, nil
}

func serviceResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}
	return res, nil
}

func sampler(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(pct)
}

func (o *observer) startTracing(ctx context.Context, cfg Config, res *resource.Resource) error {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
	if err != nil {
		return fmt.Errorf("observe: tracing: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.Tracing.SamplePct))),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(tp)
	o.tracer = newTracer(tp.Tracer(cfg.ServiceName))
	o.closers = append(o.closers, tp.Shutdown)
	return nil
}

func (o *observer) startMetrics(ctx context.Context, cfg Config, res *resource.Resource) error {
	var reg prometheus.Registerer
	if cfg.Metrics.Exporter == "prometheus" {
		o.registry = prometheus.NewRegistry()
		reg = o.registry
	}
	reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter, reg)
	if err != nil {
		return fmt.Errorf("observe: metrics: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	o.meter = mp.Meter(cfg.ServiceName)
	o.closers = append(o.closers, mp.Shutdown)
	return nil
}

func (o *observer) Tracer() Tracer      { return o.tracer }
func (o *observer) Meter() metric.Meter { return o.meter }
func (o *observer) Metrics() Metrics    { return o.metrics }
func (o *observer) Logger() Logger      { return o.logger }

func (o *observer) MetricsHandler() http.Handler {
	if o.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func (o *observer) Shutdown(ctx context.Context) error {
	errs := make([]error, 0, len(o.closers))
	for _, stop := range o.closers {
		errs = append(errs, stop(ctx))
	}
	return errors.Join(errs...)
}

// NewNopObserver returns an Observer with every subsystem disabled.
func NewNopObserver() Observer {
	obs, _ := NewObserver(context.Background(), Config{ServiceName: "nop"})
	return obs
}
