package generator

import (
	"log/slog"
	"reflect"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

// MissingValue is returned by a dependent rule whose mapping has no entry for the
// referenced value.
const MissingValue = "missing value"

// DefaultNumberOfEntities is used when no entity count is configured.
const DefaultNumberOfEntities = 30

// Config holds the generation settings shared by all entity sets.
type Config struct {
	NumberOfEntities int
	// Predefined maps type name -> property name -> rule.
	Predefined map[string]map[string]Rule
	Variables  map[string]any
}

// Generator produces records for entity sets of one schema.
type Generator struct {
	schema *metadata.Schema
	cfg    Config
	logger *slog.Logger
}

// New creates a generator. A non-positive entity count falls back to DefaultNumberOfEntities.
func New(schema *metadata.Schema, cfg Config, logger *slog.Logger) *Generator {
	if cfg.NumberOfEntities <= 0 {
		cfg.NumberOfEntities = DefaultNumberOfEntities
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{schema: schema, cfg: cfg, logger: logger}
}

// SetLogger replaces the generator's logger; nil restores slog.Default().
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	g.logger = logger
}

// NumberOfEntities returns the configured record count per entity set.
func (g *Generator) NumberOfEntities() int {
	return g.cfg.NumberOfEntities
}

// EntitySet generates NumberOfEntities records for set. Records of a set whose entity type
// is not declared are empty.
func (g *Generator) EntitySet(ctx *Context, set *metadata.EntitySet) ([]dataset.Record, error) {
	entityType, found := g.schema.EntityType(set.Type)
	if !found {
		g.logger.Debug("Entity type not declared, generating empty records", "entitySet", set.Name, "entityType", set.Type)
	}

	records := make([]dataset.Record, 0, g.cfg.NumberOfEntities)
	for i := 1; i <= g.cfg.NumberOfEntities; i++ {
		if !found {
			records = append(records, dataset.Record{})
			continue
		}
		record, err := g.Entity(ctx, entityType, i)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	g.logger.Debug("Generated entity set", "entitySet", set.Name, "records", len(records))
	return records, nil
}

// Entity generates one record of entityType; index is the 1-based record position.
func (g *Generator) Entity(ctx *Context, entityType *metadata.EntityType, index int) (dataset.Record, error) {
	return g.structured(ctx, "entity:"+entityType.Name, entityType.Name, entityType.Properties, index)
}

func (g *Generator) structured(ctx *Context, cacheKey, typeName string, props []metadata.Property, index int) (dataset.Record, error) {
	rules := g.cfg.Predefined[typeName]

	order, cached := ctx.orders[cacheKey]
	if !cached {
		var err error
		order, err = generationOrder(typeName, props, rules)
		if err != nil {
			return nil, err
		}
		ctx.orders[cacheKey] = order
	}

	record := make(dataset.Record, len(props))
	for _, prop := range order {
		if _, present := record[prop.Name]; present {
			continue
		}
		value, err := g.propertyValue(ctx, typeName, prop, rules, index, record)
		if err != nil {
			return nil, err
		}
		record[prop.Name] = value
	}
	return record, nil
}

func (g *Generator) propertyValue(ctx *Context, typeName string, prop metadata.Property, rules map[string]Rule, index int, record dataset.Record) (any, error) {
	if rule, ok := rules[prop.Name]; ok {
		value, resolved, err := g.applyRule(ctx, typeName, prop, rule, record)
		if err != nil || resolved {
			return value, err
		}
	}
	return g.defaultValue(ctx, prop, index)
}

// applyRule resolves a predefined rule. resolved is false when the rule does not produce
// a value and the type default applies.
func (g *Generator) applyRule(ctx *Context, typeName string, prop metadata.Property, rule Rule, record dataset.Record) (value any, resolved bool, err error) {
	switch rule.Kind {
	case RuleValues:
		if len(rule.Values) == 0 {
			return nil, false, nil
		}
		value = ctx.Random.Pick(scopePredefined, rule.Values)
		ctx.recordChosen(typeName, prop.Name, value)
		return value, true, nil

	case RuleVariable:
		variable, ok := g.cfg.Variables[rule.Variable]
		if !ok {
			return nil, false, &VariableNotFoundError{Variable: rule.Variable, EntityType: typeName, Property: prop.Name}
		}
		if list, isList := asList(variable); isList {
			if len(list) == 0 {
				return nil, false, nil
			}
			value = ctx.Random.Pick(scopePredefined, list)
			ctx.recordChosen(typeName, prop.Name, value)
			return value, true, nil
		}
		return variable, true, nil

	case RuleDependent:
		referenced, present := record[rule.Reference]
		if !present {
			// The reference names no declared property.
			return nil, false, nil
		}
		for _, entry := range rule.Mapping {
			if sameValue(entry.Key, referenced) {
				if entry.Value == nil {
					return MissingValue, true, nil
				}
				return entry.Value, true, nil
			}
		}
		return MissingValue, true, nil
	}

	return nil, false, nil
}

func (g *Generator) defaultValue(ctx *Context, prop metadata.Property, index int) (any, error) {
	if index <= 0 {
		index = fallbackIndex(ctx.Random)
	}

	kind := prop.Kind()
	if value, ok := primitiveValue(ctx.Random, kind, prop.Name, index); ok {
		return value, nil
	}

	complexType, found := g.schema.ComplexType(prop.Type)
	if !found || ctx.expanding[complexType.Name] {
		return dataset.Record{}, nil
	}

	ctx.expanding[complexType.Name] = true
	defer delete(ctx.expanding, complexType.Name)
	return g.structured(ctx, "complex:"+complexType.Name, complexType.Name, complexType.Properties, index)
}

// asList converts slice and array variables to []any.
func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}
