package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RuleKind tags the variant held by a Rule.
type RuleKind int

const (
	// RuleValues picks one of a literal list of values.
	RuleValues RuleKind = iota + 1
	// RuleVariable resolves a named variable ("$ref:<name>").
	RuleVariable
	// RuleDependent maps the value of another property of the same entity to a value.
	RuleDependent
)

func (k RuleKind) String() string {
	switch k {
	case RuleValues:
		return "values"
	case RuleVariable:
		return "variable"
	case RuleDependent:
		return "dependent"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// DependentValue is one key/value pair of a dependent rule.
type DependentValue struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

// Rule is a predefined value rule for one property of an entity or complex type.
type Rule struct {
	Kind RuleKind
	// Values holds the candidates of a RuleValues rule.
	Values []any
	// Variable is the variable name of a RuleVariable rule.
	Variable string
	// Reference names the property a RuleDependent rule reads.
	Reference string
	// Mapping holds the key/value pairs of a RuleDependent rule.
	Mapping []DependentValue
}

// ValuesRule returns a rule picking one of values.
func ValuesRule(values ...any) Rule {
	return Rule{Kind: RuleValues, Values: values}
}

// VariableRule returns a rule resolving the named variable.
func VariableRule(name string) Rule {
	return Rule{Kind: RuleVariable, Variable: name}
}

// DependentRule returns a rule mapping the value of reference through mapping.
func DependentRule(reference string, mapping ...DependentValue) Rule {
	return Rule{Kind: RuleDependent, Reference: reference, Mapping: mapping}
}

const variablePrefix = "$ref"

// UnmarshalJSON decodes a rule by shape: an array is a values rule, a string containing
// "$ref" is a variable rule, an object with "reference" is a dependent rule.
func (r *Rule) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty rule")
	}

	switch data[0] {
	case '[':
		var values []any
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("invalid values rule: %w", err)
		}
		*r = ValuesRule(values...)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid variable rule: %w", err)
		}
		if !strings.Contains(s, variablePrefix) {
			return fmt.Errorf("unsupported rule %q: string rules must reference a variable as \"$ref:<name>\"", s)
		}
		*r = VariableRule(variableName(s))
		return nil
	case '{':
		var dep struct {
			Reference string           `json:"reference"`
			Values    []DependentValue `json:"values"`
		}
		if err := json.Unmarshal(data, &dep); err != nil {
			return fmt.Errorf("invalid dependent rule: %w", err)
		}
		if dep.Reference == "" {
			return fmt.Errorf("dependent rule requires a reference property")
		}
		*r = DependentRule(dep.Reference, dep.Values...)
		return nil
	default:
		return fmt.Errorf("unsupported rule %s", string(data))
	}
}

// MarshalJSON encodes the rule in the same shapes UnmarshalJSON accepts.
func (r Rule) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RuleValues:
		values := r.Values
		if values == nil {
			values = []any{}
		}
		return json.Marshal(values)
	case RuleVariable:
		return json.Marshal(variablePrefix + ":" + r.Variable)
	case RuleDependent:
		return json.Marshal(struct {
			Reference string           `json:"reference"`
			Values    []DependentValue `json:"values,omitempty"`
		}{r.Reference, r.Mapping})
	default:
		return nil, fmt.Errorf("cannot encode rule of kind %v", r.Kind)
	}
}

// variableName returns the text between the first and second ":" of "$ref:<name>".
func variableName(ref string) string {
	parts := strings.Split(ref, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
