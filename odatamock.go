// Package odatamock generates deterministic mock datasets from OData v2 metadata.
//
// A Generator parses the metadata once and produces, for every entity set, a fixed number
// of records whose values follow the declared EDM types. Predefined rules replace the
// type defaults per property:
//
//	opts := odatamock.Options{
//	    NumberOfEntitiesToGenerate: 10,
//	    MockDataRootURI:            "http://localhost/service",
//	    Rules: odatamock.Rules{
//	        Predefined: map[string]map[string]odatamock.Rule{
//	            "Product": {
//	                "Currency": odatamock.ValuesRule("EUR", "USD"),
//	                "Symbol": odatamock.DependentRule("Currency",
//	                    odatamock.DependentValue{Key: "EUR", Value: "€"},
//	                    odatamock.DependentValue{Key: "USD", Value: "$"}),
//	            },
//	        },
//	    },
//	}
//	gen, err := odatamock.New(metadataXML, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := gen.Generate()
//
// Values propagate along referential constraints, every record carries an OData v2
// __metadata entry and each navigation property holds a __deferred link. Generation uses
// no external randomness: the same metadata and options always yield the same dataset.
package odatamock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/dedup"
	"github.com/nlstn/go-odata-mock/internal/generator"
	"github.com/nlstn/go-odata-mock/internal/keys"
	"github.com/nlstn/go-odata-mock/internal/linker"
	"github.com/nlstn/go-odata-mock/internal/metadata"
	"github.com/nlstn/go-odata-mock/internal/observability"
)

// Dataset maps entity set names to their generated records.
type Dataset = dataset.Dataset

// Record is one generated entity.
type Record = dataset.Record

// EntityMetadata is the value stored under MetadataKey.
type EntityMetadata = dataset.EntityMetadata

// DeferredLink is the value stored under every navigation property name.
type DeferredLink = dataset.DeferredLink

// Deferred holds the URI of a deferred navigation target.
type Deferred = dataset.Deferred

// MetadataKey is the record entry holding the entity's EntityMetadata.
const MetadataKey = dataset.MetadataKey

// Document is a parsed metadata document. Implementations answer tag and attribute queries
// over the descendant tree.
type Document = metadata.Document

// Node is one element of a Document.
type Node = metadata.Node

// Schema is the parsed entity model.
type Schema = metadata.Schema

// Generator produces mock datasets for one metadata document.
type Generator struct {
	schema        *metadata.Schema
	generator     *generator.Generator
	linker        *linker.Linker
	logger        *slog.Logger
	observability *observability.Config

	rootURI  string
	skip     map[string]bool
	distinct []string
}

// New parses metadata and returns a Generator for it.
//
// An empty or malformed document yields a *ParseError.
func New(metadataXML string, opts Options) (*Generator, error) {
	doc, err := metadata.ParseXML(metadataXML)
	if err != nil {
		return nil, err
	}
	return NewFromDocument(doc, opts)
}

// NewFromDocument builds a Generator from an already parsed document.
func NewFromDocument(doc Document, opts Options) (*Generator, error) {
	if opts.NumberOfEntitiesToGenerate < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNumberOfEntities, opts.NumberOfEntitiesToGenerate)
	}

	schema, err := metadata.Parse(doc)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	cfg := generator.Config{
		NumberOfEntities: opts.NumberOfEntitiesToGenerate,
		Predefined:       opts.Rules.Predefined,
		Variables:        opts.Rules.Variables,
	}

	skip := make(map[string]bool, len(opts.Rules.SkipMockGeneration))
	for _, name := range opts.Rules.SkipMockGeneration {
		skip[name] = true
	}

	return &Generator{
		schema:        schema,
		generator:     generator.New(schema, cfg, logger),
		linker:        linker.New(schema, logger),
		logger:        logger,
		observability: observability.Default(),
		rootURI:       keys.NormalizeRootURI(opts.MockDataRootURI),
		skip:          skip,
		distinct:      append([]string(nil), opts.Rules.DistinctValues...),
	}, nil
}

// SetLogger sets a custom logger for the generator.
// If logger is nil, slog.Default() is used.
func (g *Generator) SetLogger(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	g.logger = logger
	g.generator.SetLogger(logger)
	g.linker.SetLogger(logger)
	return nil
}

// Schema returns the parsed entity model. It must not be modified.
func (g *Generator) Schema() *Schema {
	return g.schema
}

// RootURI returns the normalized root URI used for entity URIs.
func (g *Generator) RootURI() string {
	return g.rootURI
}

// Generate builds a complete dataset. Repeated calls return identical datasets.
func (g *Generator) Generate() (Dataset, error) {
	return g.GenerateContext(context.Background())
}

// GenerateContext is Generate with a parent context for trace propagation.
func (g *Generator) GenerateContext(ctx context.Context) (Dataset, error) {
	start := time.Now()
	metrics := g.observability.Metrics()

	ctx, span := g.observability.Tracer().StartGenerate(ctx, len(g.schema.EntitySets), g.generator.NumberOfEntities())
	defer span.End()

	data, err := g.generate(ctx)
	metrics.RecordDuration(ctx, time.Since(start), err != nil)
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordError(ctx, errorKind(err))
		g.logger.Error("Mock data generation failed", "error", err)
		return nil, err
	}
	span.SetAttributes(observability.RecordCountAttr(data.Len()))
	return data, nil
}

func (g *Generator) generate(ctx context.Context) (Dataset, error) {
	tracer := g.observability.Tracer()
	genCtx := generator.NewContext()
	data := make(Dataset, len(g.schema.EntitySets))

	for _, set := range g.schema.EntitySets {
		if g.skip[set.Name] {
			g.logger.Debug("Skipping entity set", "entitySet", set.Name)
			continue
		}

		setCtx, setSpan := tracer.StartEntitySet(ctx, set.Name, set.Type)
		records, err := g.generator.EntitySet(genCtx, set)
		if err != nil {
			observability.RecordError(setSpan, err)
			setSpan.End()
			return nil, fmt.Errorf("failed to generate entity set %s: %w", set.Name, err)
		}
		setSpan.SetAttributes(observability.RecordCountAttr(len(records)))
		setSpan.End()

		g.observability.Metrics().RecordRecords(setCtx, set.Name, len(records))
		data[set.Name] = records
	}

	_, linkSpan := tracer.StartLink(ctx)
	linked := g.linker.Link(genCtx, data)
	keys.Attach(g.schema, data, g.rootURI)
	removed := dedup.Dataset(g.schema, data, g.distinct)
	linkSpan.SetAttributes(observability.LinkedValuesAttr(linked), observability.DuplicatesRemovedAttr(removed))
	linkSpan.End()

	g.logger.Info("Generated mock dataset",
		"entitySets", len(data),
		"records", data.Len(),
		"linkedValues", linked,
		"duplicatesRemoved", removed)
	return data, nil
}
