package otel_test

import (
	"context"
	"testing"

	antherotel "github.com/petal-labs/anther/otel"
	"github.com/petal-labs/anther/tool"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestMeter() (*metric.ManualReader, *metric.MeterProvider) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	return reader, mp
}

// collectMetrics reads all metrics from the reader.
func collectMetrics(t *testing.T, reader *metric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return &rm
}

// findMetric searches for a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestToolObserverRecordsMetrics(t *testing.T) {
	reader, mp := newTestMeter()
	meter := mp.Meter("test-tool-observer")
	tracer := noop.NewTracerProvider().Tracer("test-tool-observer")

	observer, err := antherotel.NewToolObserver(meter, tracer)
	if err != nil {
		t.Fatalf("NewToolObserver() error = %v", err)
	}

	observer.ObserveInvoke(tool.InvokeObservation{
		Tool:       "read_file",
		Success:    false,
		ErrorKind:  tool.KindNotFound,
		DurationMS: 12,
	})
	observer.ObserveHealth(tool.HealthObservation{
		Tool:           "get_weather",
		Status:         tool.StatusUnhealthy,
		PreviousStatus: tool.StatusReady,
		FailureCount:   3,
		DurationMS:     45,
		ErrorMessage:   "dial tcp: connection refused",
	})

	rm := collectMetrics(t, reader)

	invocations := findMetric(rm, "anther.tool.invocations")
	if invocations == nil {
		t.Fatal("anther.tool.invocations metric not found")
	}
	if _, ok := invocations.Data.(metricdata.Sum[int64]); !ok {
		t.Fatalf("anther.tool.invocations type = %T, want Sum[int64]", invocations.Data)
	}

	health := findMetric(rm, "anther.tool.health.checks")
	if health == nil {
		t.Fatal("anther.tool.health.checks metric not found")
	}
	if _, ok := health.Data.(metricdata.Sum[int64]); !ok {
		t.Fatalf("anther.tool.health.checks type = %T, want Sum[int64]", health.Data)
	}

	latency := findMetric(rm, "anther.tool.latency")
	if latency == nil {
		t.Fatal("anther.tool.latency metric not found")
	}
	if _, ok := latency.Data.(metricdata.Histogram[float64]); !ok {
		t.Fatalf("anther.tool.latency type = %T, want Histogram[float64]", latency.Data)
	}
}

func TestToolObserverEmitsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, mp := newTestMeter()

	observer, err := antherotel.NewToolObserver(mp.Meter("test"), tp.Tracer("test"))
	if err != nil {
		t.Fatalf("NewToolObserver() error = %v", err)
	}

	observer.ObserveInvoke(tool.InvokeObservation{Tool: "list_files", Success: true, DurationMS: 2})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	if spans[0].Name() != "tool.invoke" {
		t.Fatalf("span name = %q, want tool.invoke", spans[0].Name())
	}
}

func TestSetupWithoutEndpoint(t *testing.T) {
	observer, shutdown, err := antherotel.Setup(context.Background(), antherotel.SetupConfig{
		ServiceName: "anther-test",
		Version:     "dev",
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if observer == nil {
		t.Fatal("Setup() observer = nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}
