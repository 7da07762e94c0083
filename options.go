package odatamock

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nlstn/go-odata-mock/internal/generator"
)

// DefaultNumberOfEntities is the record count per entity set when none is configured.
const DefaultNumberOfEntities = generator.DefaultNumberOfEntities

// MissingValue is produced by a dependent rule that has no entry for the referenced value.
const MissingValue = generator.MissingValue

// Options configures a Generator. The JSON names match existing option files.
type Options struct {
	// NumberOfEntitiesToGenerate is the record count per entity set. Zero means
	// DefaultNumberOfEntities; negative values are rejected.
	NumberOfEntitiesToGenerate int `json:"numberOfEntitiesToGenerate,omitempty"`

	// MockDataRootURI prefixes every entity URI. Query and fragment are dropped and a
	// trailing "/" is added when missing.
	MockDataRootURI string `json:"mockDataRootURI,omitempty"`

	Rules Rules `json:"rules"`
}

// Rules customizes generation per entity set and property.
type Rules struct {
	// SkipMockGeneration lists entity sets that are left out of the dataset.
	SkipMockGeneration []string `json:"skipMockGeneration,omitempty"`

	// DistinctValues lists entity sets whose records must have unique key tuples.
	DistinctValues []string `json:"distinctValues,omitempty"`

	// Predefined maps entity or complex type name -> property name -> rule.
	Predefined map[string]map[string]Rule `json:"predefined,omitempty"`

	// Variables are the named values "$ref:<name>" rules resolve against.
	Variables map[string]any `json:"variables,omitempty"`
}

// Rule is a predefined value rule for one property.
type Rule = generator.Rule

// RuleKind identifies the kind of a Rule.
type RuleKind = generator.RuleKind

// DependentValue is one key/value entry of a dependent rule.
type DependentValue = generator.DependentValue

// Rule kinds.
const (
	RuleValues    = generator.RuleValues
	RuleVariable  = generator.RuleVariable
	RuleDependent = generator.RuleDependent
)

// ValuesRule picks each value from values.
func ValuesRule(values ...any) Rule {
	return generator.ValuesRule(values...)
}

// VariableRule resolves the value from the named variable; a list variable is picked from.
func VariableRule(name string) Rule {
	return generator.VariableRule(name)
}

// DependentRule maps the value of the reference property to this property's value.
func DependentRule(reference string, mapping ...DependentValue) Rule {
	return generator.DependentRule(reference, mapping...)
}

// LoadOptions decodes an options file.
//
// Example:
//
//	{
//	  "numberOfEntitiesToGenerate": 10,
//	  "mockDataRootURI": "/sap/opu/odata/sap/CATALOG_SRV",
//	  "rules": {
//	    "skipMockGeneration": ["Suppliers"],
//	    "distinctValues": ["PriceEntries"],
//	    "variables": {"currencies": ["EUR", "USD"]},
//	    "predefined": {
//	      "PriceEntry": {
//	        "Currency": "$ref:currencies",
//	        "Token": {"reference": "Currency", "values": [{"key": "EUR", "value": "euro"}]}
//	      }
//	    }
//	  }
//	}
func LoadOptions(r io.Reader) (Options, error) {
	var opts Options
	dec := json.NewDecoder(r)
	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to decode options: %w", err)
	}
	return opts, nil
}
