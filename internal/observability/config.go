package observability

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultServiceName is reported when no service name is configured.
	DefaultServiceName = "odatamock"

	instrumentationName = "github.com/nlstn/go-odata-mock"
)

// Config holds the telemetry providers used by a generator.
type Config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	serviceVersion string
	logger         *slog.Logger

	tracer  *Tracer
	metrics *Metrics
}

// Option configures a Config.
type Option func(*Config)

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) {
		c.meterProvider = mp
	}
}

// WithServiceName sets the service name attached to spans.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.serviceName = name
	}
}

// WithServiceVersion sets the instrumentation version.
func WithServiceVersion(version string) Option {
	return func(c *Config) {
		c.serviceVersion = version
	}
}

// WithLogger sets the logger used to report instrumentation failures. nil keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConfig applies opts over no-op providers. Call Initialize before use.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
		serviceName:    DefaultServiceName,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize creates the tracer and the metric instruments.
func (c *Config) Initialize() error {
	c.tracer = newTracer(c.tracerProvider, c.serviceName, c.serviceVersion)

	metrics, err := newMetrics(c.meterProvider, c.serviceVersion)
	if err != nil {
		return fmt.Errorf("failed to create metric instruments: %w", err)
	}
	c.metrics = metrics

	c.logger.Debug("Observability initialized", "serviceName", c.serviceName, "serviceVersion", c.serviceVersion)
	return nil
}

// Tracer returns the span factory. It is nil before Initialize.
func (c *Config) Tracer() *Tracer {
	return c.tracer
}

// Metrics returns the metric recorder. It is nil before Initialize.
func (c *Config) Metrics() *Metrics {
	return c.metrics
}

// ServiceName returns the configured service name.
func (c *Config) ServiceName() string {
	return c.serviceName
}

// Default returns an initialized no-op configuration.
func Default() *Config {
	c := NewConfig()
	if err := c.Initialize(); err != nil {
		// No-op instruments cannot fail to register.
		panic(err)
	}
	return c
}
