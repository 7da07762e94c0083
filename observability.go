package odatamock

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-odata-mock/internal/observability"
)

// ObservabilityConfig configures tracing and metrics for a Generator.
// All providers are optional; when nil, the corresponding feature is a no-op.
type ObservabilityConfig struct {
	// TracerProvider provides the OpenTelemetry tracer. If nil, tracing is disabled.
	TracerProvider trace.TracerProvider

	// MeterProvider provides the OpenTelemetry meter. If nil, metrics are disabled.
	MeterProvider metric.MeterProvider

	// ServiceName identifies the generator in telemetry data.
	// Defaults to "odatamock" if not specified.
	ServiceName string

	// ServiceVersion is reported as the instrumentation version.
	ServiceVersion string
}

// SetObservability configures OpenTelemetry tracing and metrics.
//
// Each Generate call records an "odatamock.generate" span with one
// "odatamock.generate.entityset" child per entity set and an "odatamock.link" child,
// the "odatamock.records.generated" counter and the "odatamock.generate.duration"
// histogram.
//
// Example:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	defer tp.Shutdown(ctx)
//
//	gen.SetObservability(odatamock.ObservabilityConfig{
//	    TracerProvider: tp,
//	    ServiceName:    "catalog-mock",
//	})
func (g *Generator) SetObservability(cfg ObservabilityConfig) error {
	opts := []observability.Option{observability.WithLogger(g.logger)}

	if cfg.TracerProvider != nil {
		opts = append(opts, observability.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, observability.WithMeterProvider(cfg.MeterProvider))
	}
	if cfg.ServiceName != "" {
		opts = append(opts, observability.WithServiceName(cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		opts = append(opts, observability.WithServiceVersion(cfg.ServiceVersion))
	}

	obsCfg := observability.NewConfig(opts...)
	if err := obsCfg.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	g.observability = obsCfg

	g.logger.Info("Observability configured",
		"serviceName", obsCfg.ServiceName(),
		"tracing", cfg.TracerProvider != nil,
		"metrics", cfg.MeterProvider != nil)
	return nil
}
