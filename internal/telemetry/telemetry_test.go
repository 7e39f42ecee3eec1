package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestConfig(t *testing.T) {
	cfg := Config{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "proxypool",
		Version:     "1.0.0",
		Environment: "test",
		SampleRate:  0.5,
	}

	if cfg.ServiceName != "proxypool" {
		t.Errorf("ServiceName = %s, want proxypool", cfg.ServiceName)
	}
}

func TestInit_Disabled(t *testing.T) {
	cfg := Config{
		Enabled:     false,
		ServiceName: "proxypool",
	}

	provider, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if provider == nil {
		t.Fatal("provider should not be nil")
	}
	if provider.tracer == nil {
		t.Error("tracer should not be nil even when disabled")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on a disabled provider error = %v", err)
	}
}

func TestGet_Uninitialized(t *testing.T) {
	globalProvider = nil

	provider := Get()
	if provider == nil {
		t.Fatal("Get() should return a provider even when uninitialized")
	}
	if provider.tracer == nil {
		t.Error("tracer should not be nil")
	}
}

func TestStartSpan(t *testing.T) {
	globalProvider = nil

	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "crawl-task")
	if span == nil {
		t.Error("span should not be nil")
	}
	_ = newCtx

	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()
	span := SpanFromContext(ctx)
	if span == nil {
		t.Error("SpanFromContext should return a span (noop) for a bare context")
	}
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "validate-batch")
	defer span.End()

	AddEvent(newCtx, "candidate-validated",
		attribute.String("proxy", "1.2.3.4:8080"),
		attribute.Int("count", 42),
	)
}

func TestSetError(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "crawl-task")
	defer span.End()

	SetError(newCtx, context.DeadlineExceeded)
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "crawl-task")
	defer span.End()

	RecordError(newCtx, context.DeadlineExceeded)
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "crawl-task")
	defer span.End()

	SetAttributes(newCtx,
		attribute.String("adapter", "free-proxy-list"),
		attribute.Int("found", 42),
	)
}

func TestWithAttributes(t *testing.T) {
	opt := WithAttributes(attribute.String("adapter", "github-vakhov"))
	if opt == nil {
		t.Error("WithAttributes should return an option")
	}
}

func TestProvider_Tracer(t *testing.T) {
	provider := &Provider{
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	if provider.Tracer() == nil {
		t.Error("Tracer() should not return nil")
	}
}

func TestProvider_Shutdown_NilTracerProvider(t *testing.T) {
	provider := &Provider{
		tp:     nil,
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestStartTaskSpan(t *testing.T) {
	globalProvider = nil

	ctx := context.Background()
	newCtx, span := StartTaskSpan(ctx, "Proxy Crawl", true, 3, 1)
	if span == nil {
		t.Fatal("span should not be nil")
	}
	_ = newCtx
	span.End()
}

func samplingParams(name string) sdktrace.SamplingParameters {
	return sdktrace.SamplingParameters{Name: name}
}

func TestTaskAwareSampler_AlwaysSamplesTaskAndCrawlSpans(t *testing.T) {
	sampler := newTaskAwareSampler(0)

	for _, name := range []string{"scheduler.task.Proxy Crawl", "crawl.run_all"} {
		result := sampler.ShouldSample(samplingParams(name))
		if result.Decision != sdktrace.RecordAndSample {
			t.Errorf("%s: decision = %v, want RecordAndSample even with rate 0", name, result.Decision)
		}
	}
}

func TestTaskAwareSampler_UsesBaseForOtherSpans(t *testing.T) {
	sampler := newTaskAwareSampler(0)

	result := sampler.ShouldSample(samplingParams("store.upsert_candidates"))
	if result.Decision == sdktrace.RecordAndSample {
		t.Error("non-task span should fall through to the base sampler, not always-sample")
	}
}

func TestTaskAwareSampler_Description(t *testing.T) {
	sampler := newTaskAwareSampler(0.5)
	if sampler.Description() == "" {
		t.Error("Description() should not be empty")
	}
}
