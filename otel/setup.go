package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SetupConfig controls telemetry setup.
type SetupConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint (host:port). Empty
	// disables trace export; spans are still created but never leave
	// the process.
	Endpoint    string
	ServiceName string
	Version     string
}

// Setup installs trace and meter providers and returns a ToolObserver
// bound to them, plus a shutdown function that flushes exporters.
func Setup(ctx context.Context, cfg SetupConfig) (*ToolObserver, func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "anther"
	}

	res := sdkresource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	)

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("otel: create trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	observer, err := NewToolObserver(
		meterProvider.Meter("anther/tool"),
		tracerProvider.Tracer("anther/tool"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("otel: create tool observer: %w", err)
	}

	shutdown := func(ctx context.Context) error {
		traceErr := tracerProvider.Shutdown(ctx)
		meterErr := meterProvider.Shutdown(ctx)
		if traceErr != nil {
			return traceErr
		}
		return meterErr
	}
	return observer, shutdown, nil
}
