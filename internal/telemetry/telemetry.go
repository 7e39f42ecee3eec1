package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultServiceName = "proxypool"

// Config controls whether and where traces are exported.
type Config struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Version     string
	Environment string
	SampleRate  float64
}

// Provider wraps a TracerProvider; the zero value is never used directly,
// Init or Get always hand back one with a working tracer.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

var globalProvider *Provider

// Init sets up tracing for the worker process. When cfg.Enabled is false it
// still returns a usable Provider backed by a no-op tracer, so callers never
// need a separate disabled-tracing code path.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	if !cfg.Enabled {
		return &Provider{
			tracer: otel.Tracer(serviceName),
		}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newTaskAwareSampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	provider := &Provider{
		tp:     tp,
		tracer: tp.Tracer(serviceName),
	}

	globalProvider = provider
	return provider, nil
}

// taskAwareSampler always samples scheduler task runs and crawl runs
// regardless of the configured SampleRate. These are the pool's low-volume,
// high-value spans (a handful of executions an hour, not one per HTTP
// request); losing one to sampling hides exactly the failures operators
// care about, so they bypass the ratio-based sampler that everything else
// (store ops, per-proxy validation) still goes through.
type taskAwareSampler struct {
	base sdktrace.Sampler
}

func newTaskAwareSampler(rate float64) sdktrace.Sampler {
	var base sdktrace.Sampler
	switch {
	case rate >= 1.0:
		base = sdktrace.AlwaysSample()
	case rate <= 0:
		base = sdktrace.NeverSample()
	default:
		base = sdktrace.TraceIDRatioBased(rate)
	}
	return taskAwareSampler{base: base}
}

func (s taskAwareSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	if strings.HasPrefix(p.Name, "scheduler.task.") || strings.HasPrefix(p.Name, "crawl.") {
		return sdktrace.AlwaysSample().ShouldSample(p)
	}
	return s.base.ShouldSample(p)
}

func (s taskAwareSampler) Description() string {
	return "ProxyPoolTaskAwareSampler{" + s.base.Description() + "}"
}

// Shutdown flushes and stops the exporter. A no-op when tracing was never
// enabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		return p.tp.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Get returns the global provider set up by Init, or a disabled fallback if
// Init was never called (unit tests, or a component constructed before
// App.Run initializes telemetry).
func Get() *Provider {
	if globalProvider == nil {
		return &Provider{
			tracer: otel.Tracer(defaultServiceName),
		}
	}
	return globalProvider
}

// StartSpan starts a new span under the global provider's tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Get().tracer.Start(ctx, name, opts...)
}

// StartTaskSpan starts a span for one scheduler task firing, pre-populated
// with TaskAttributes so callers don't have to repeat the attribute list at
// every call site.
func StartTaskSpan(ctx context.Context, taskName string, shared bool, executionCount, failureCount int) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, "scheduler.task."+taskName)
	span.SetAttributes(TaskAttributes(taskName, shared, executionCount, failureCount)...)
	return ctx, span
}

// SpanFromContext retrieves the span carried on ctx, or a no-op span if
// none was ever started.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddEvent adds a named event with attributes to the span in ctx.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetError marks the span in ctx as failed and records err.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordError records err on the span in ctx without changing its status,
// for failures that are expected and handled (a single dropped candidate,
// a skipped task firing) rather than ones that should flag the span red.
func RecordError(ctx context.Context, err error, opts ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, opts...)
}

// SetAttributes sets attributes on the span in ctx.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}

// WithAttributes builds a SpanStartOption carrying attrs.
func WithAttributes(attrs ...attribute.KeyValue) trace.SpanStartOption {
	return trace.WithAttributes(attrs...)
}
