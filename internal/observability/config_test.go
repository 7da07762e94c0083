package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if c.Tracer() != nil || c.Metrics() != nil {
		t.Fatal("tracer and metrics must be nil before Initialize")
	}
	if c.ServiceName() != DefaultServiceName {
		t.Errorf("expected default service name %q, got %q", DefaultServiceName, c.ServiceName())
	}

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if c.Tracer() == nil || c.Metrics() == nil {
		t.Fatal("expected tracer and metrics after Initialize")
	}
}

func TestOptions(t *testing.T) {
	c := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithServiceName("catalog-mock"),
		WithServiceVersion("1.2.3"),
		WithLogger(nil),
	)
	if c.ServiceName() != "catalog-mock" || c.serviceVersion != "1.2.3" {
		t.Errorf("options not applied: %+v", c)
	}
}

func TestSpansAndMetricsWithNoopProviders(t *testing.T) {
	c := Default()
	ctx := context.Background()

	ctx, root := c.Tracer().StartGenerate(ctx, 4, 30)
	_, setSpan := c.Tracer().StartEntitySet(ctx, "Products", "Product")
	setSpan.SetAttributes(RecordCountAttr(30))
	RecordError(setSpan, errors.New("boom"))
	RecordError(setSpan, nil)
	setSpan.End()

	_, link := c.Tracer().StartLink(ctx)
	link.SetAttributes(LinkedValuesAttr(12), DuplicatesRemovedAttr(0))
	link.End()
	root.End()

	c.Metrics().RecordRecords(ctx, "Products", 30)
	c.Metrics().RecordDuration(ctx, 15*time.Millisecond, false)
	c.Metrics().RecordError(ctx, "VariableNotFoundError")
}
