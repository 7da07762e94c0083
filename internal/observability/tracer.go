package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanGenerate          = "odatamock.generate"
	SpanGenerateEntitySet = "odatamock.generate.entityset"
	SpanLink              = "odatamock.link"
)

// Attribute keys.
const (
	AttrServiceName       = attribute.Key("service.name")
	AttrEntitySet         = attribute.Key("odatamock.entity_set")
	AttrEntityType        = attribute.Key("odatamock.entity_type")
	AttrRecordCount       = attribute.Key("odatamock.record_count")
	AttrEntitySetCount    = attribute.Key("odatamock.entity_set_count")
	AttrLinkedValues      = attribute.Key("odatamock.linked_values")
	AttrDuplicatesRemoved = attribute.Key("odatamock.duplicates_removed")
)

// Tracer starts the spans of a generation run.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

func newTracer(tp trace.TracerProvider, serviceName, version string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(version)),
		serviceName: serviceName,
	}
}

// StartGenerate starts the root span of one Generate call.
func (t *Tracer) StartGenerate(ctx context.Context, entitySets, perSet int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanGenerate, trace.WithAttributes(
		AttrServiceName.String(t.serviceName),
		AttrEntitySetCount.Int(entitySets),
		AttrRecordCount.Int(perSet),
	))
}

// StartEntitySet starts the span generating one entity set.
func (t *Tracer) StartEntitySet(ctx context.Context, entitySet, entityType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanGenerateEntitySet, trace.WithAttributes(
		AttrEntitySet.String(entitySet),
		AttrEntityType.String(entityType),
	))
}

// StartLink starts the span of the referential linking pass.
func (t *Tracer) StartLink(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanLink)
}

// RecordError marks span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordCountAttr returns the record count attribute.
func RecordCountAttr(n int) attribute.KeyValue {
	return AttrRecordCount.Int(n)
}

// LinkedValuesAttr returns the linked values attribute.
func LinkedValuesAttr(n int) attribute.KeyValue {
	return AttrLinkedValues.Int(n)
}

// DuplicatesRemovedAttr returns the removed duplicates attribute.
func DuplicatesRemovedAttr(n int) attribute.KeyValue {
	return AttrDuplicatesRemoved.Int(n)
}
