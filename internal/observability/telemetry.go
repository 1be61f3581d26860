// Package observability wires the OpenTelemetry SDK: OTLP trace and
// metric export to a collector, a Prometheus bridge for the /metrics
// endpoint, and the per-request instrumentation middleware.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"

	"userhub-backend/internal/config"
)

// Provider owns the configured trace and meter providers and the
// Prometheus registry backing the /metrics endpoint.
type Provider struct {
	traceProvider *sdktrace.TracerProvider
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
	logger        *zap.Logger
}

// Init configures the OpenTelemetry SDK and registers the global
// providers. It must run before any route registration so every request
// is captured. The returned Provider is shut down by the caller on
// process exit.
func Init(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	traceExporter, err := otlptrace.New(ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(), // collector is expected on the local network
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	// The bridge exporter mirrors the live instrument state into a
	// private Prometheus registry, so GET /metrics always reports what
	// the instruments actually hold.
	registry := prometheus.NewRegistry()
	bridge, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus bridge: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithReader(bridge),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	// Export failures are logged and never abort request handling.
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("telemetry export error", zap.Error(err))
	}))

	logger.Info("Telemetry initialized",
		zap.String("collector", cfg.OTLPEndpoint),
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	)

	return &Provider{
		traceProvider: tp,
		meterProvider: mp,
		registry:      registry,
		logger:        logger,
	}, nil
}

// MetricsHandler serves the live metric state in Prometheus text
// exposition format.
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops both providers. The caller bounds it with
// a deadline so a hung collector cannot wedge process exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := p.traceProvider.Shutdown(ctx); err != nil {
		p.logger.Warn("trace provider shutdown", zap.Error(err))
		firstErr = err
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		p.logger.Warn("meter provider shutdown", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
