package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricRecordsGenerated = "odatamock.records.generated"
	MetricGenerateDuration = "odatamock.generate.duration"
	MetricGenerateErrors   = "odatamock.generate.errors"
)

// Metrics records generation counters and timings.
type Metrics struct {
	recordsGenerated metric.Int64Counter
	generateDuration metric.Float64Histogram
	generateErrors   metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider, version string) (*Metrics, error) {
	meter := mp.Meter(instrumentationName, metric.WithInstrumentationVersion(version))

	recordsGenerated, err := meter.Int64Counter(MetricRecordsGenerated,
		metric.WithDescription("Number of generated records"),
		metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}

	generateDuration, err := meter.Float64Histogram(MetricGenerateDuration,
		metric.WithDescription("Duration of a complete dataset generation"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	generateErrors, err := meter.Int64Counter(MetricGenerateErrors,
		metric.WithDescription("Number of failed dataset generations"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		recordsGenerated: recordsGenerated,
		generateDuration: generateDuration,
		generateErrors:   generateErrors,
	}, nil
}

// RecordRecords adds n generated records of entitySet.
func (m *Metrics) RecordRecords(ctx context.Context, entitySet string, n int) {
	m.recordsGenerated.Add(ctx, int64(n), metric.WithAttributes(AttrEntitySet.String(entitySet)))
}

// RecordDuration records the duration of one Generate call.
func (m *Metrics) RecordDuration(ctx context.Context, d time.Duration, failed bool) {
	m.generateDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("error", failed)))
}

// RecordError counts a failed Generate call.
func (m *Metrics) RecordError(ctx context.Context, kind string) {
	m.generateErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", kind)))
}
