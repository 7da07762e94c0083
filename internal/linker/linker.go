package linker

import (
	"log/slog"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/generator"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

// scopeReference is the random scope for picks of previously chosen rule values.
const scopeReference = "$reference"

// Linker propagates referential constraint values between generated entity sets.
type Linker struct {
	schema *metadata.Schema
	logger *slog.Logger
}

// New creates a linker for schema. A nil logger falls back to slog.Default().
func New(schema *metadata.Schema, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{schema: schema, logger: logger}
}

// SetLogger replaces the linker's logger; nil restores slog.Default().
func (l *Linker) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	l.logger = logger
}

// Link rewrites data in place. For every navigation property with property references and
// every record i of the owning set, the dependent record i of the target set receives the
// principal value. When list rules picked values for (navigation property, target property)
// the principal value is replaced by one of those picks instead.
//
// Records are paired by position. A missing target set or a target set shorter than the
// owning set leaves the unpaired slots untouched. Link returns the number of values written.
func (l *Linker) Link(ctx *generator.Context, data dataset.Dataset) int {
	linked := 0
	for _, set := range l.schema.EntitySets {
		records, ok := data[set.Name]
		if !ok {
			continue
		}
		for _, nav := range set.NavigationProperties {
			linked += l.linkNavigation(ctx, data, set, nav, records)
		}
	}
	return linked
}

func (l *Linker) linkNavigation(ctx *generator.Context, data dataset.Dataset, set *metadata.EntitySet, nav *metadata.NavigationProperty, records []dataset.Record) int {
	refs := min(len(nav.From.PropRef), len(nav.To.PropRef))
	if refs == 0 {
		return 0
	}

	targets, targetFound := data[nav.To.EntitySet]
	warned := false
	warn := func(index int) {
		if warned {
			return
		}
		warned = true
		l.logger.Warn("Referential constraint target not aligned, leaving values untouched",
			"entitySet", set.Name,
			"navigationProperty", nav.Name,
			"targetEntitySet", nav.To.EntitySet,
			"index", index)
	}

	linked := 0
	for j := 0; j < refs; j++ {
		fromProp := nav.From.PropRef[j]
		toProp := nav.To.PropRef[j]
		chosen := ctx.ChosenValues(nav.Name, toProp)

		for i, record := range records {
			if len(chosen) > 0 {
				record[fromProp] = ctx.Random.Pick(scopeReference, chosen)
				linked++
				continue
			}
			if !targetFound || i >= len(targets) {
				warn(i)
				continue
			}
			targets[i][toProp] = record[fromProp]
			linked++
		}
	}
	return linked
}
