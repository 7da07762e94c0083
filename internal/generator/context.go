package generator

import (
	"github.com/nlstn/go-odata-mock/internal/metadata"
	"github.com/nlstn/go-odata-mock/internal/random"
)

// Context carries the mutable state of one generation run. A fresh Context must be used
// for every run; nothing in it is valid across runs.
type Context struct {
	Random *random.Engine

	// chosen records every value picked by a list rule, keyed by type and property name.
	chosen map[string]map[string][]any
	// orders caches the property generation order per structured type.
	orders map[string][]metadata.Property
	// expanding tracks complex types currently being generated to stop self-nesting.
	expanding map[string]bool
}

// NewContext returns an empty context with a fresh random engine.
func NewContext() *Context {
	return &Context{
		Random:    random.New(),
		chosen:    make(map[string]map[string][]any),
		orders:    make(map[string][]metadata.Property),
		expanding: make(map[string]bool),
	}
}

// ChosenValues returns the values picked so far by list rules for typeName.property.
func (c *Context) ChosenValues(typeName, property string) []any {
	return c.chosen[typeName][property]
}

func (c *Context) recordChosen(typeName, property string, value any) {
	props, ok := c.chosen[typeName]
	if !ok {
		props = make(map[string][]any)
		c.chosen[typeName] = props
	}
	props[property] = append(props[property], value)
}
