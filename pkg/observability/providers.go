package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "rectjoin"
	meterName  = "rectjoin"
)

// Providers holds the initialized observability providers: a tracer, a
// meter, a logger, and — when metrics are enabled — the Prometheus
// registry PrometheusHandler serves.
type Providers struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Shutdown flushes the tracer provider. Must be called before
	// process exit.
	Shutdown func(ctx context.Context) error
}

// Init builds the tracer, meter, and logger from cfg. With
// MetricsEnabled false, Meter is the OTel no-op implementation and
// Registry is nil; PrometheusHandler then has nothing to serve.
func Init(cfg Config) (Providers, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return Providers{}, fmt.Errorf("build otel resource: %w", err)
	}

	sampler := sdktrace.ParentBased(sdktrace.AlwaysSample())
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	var (
		meter    metric.Meter
		registry *prometheus.Registry
	)

	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()

		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return Providers{}, errors.Join(
				fmt.Errorf("create prometheus exporter: %w", err),
				tp.Shutdown(context.Background()),
			)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		)
		meter = mp.Meter(meterName)
	} else {
		meter = noopmetric.NewMeterProvider().Meter(meterName)
	}

	return Providers{
		Tracer:   tp.Tracer(tracerName),
		Meter:    meter,
		Logger:   NewLogger(cfg),
		Registry: registry,
		Shutdown: tp.Shutdown,
	}, nil
}
