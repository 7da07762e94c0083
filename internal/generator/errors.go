package generator

import (
	"fmt"
	"strings"
)

// VariableNotFoundError is returned when a "$ref:<name>" rule names an undefined variable.
type VariableNotFoundError struct {
	Variable   string
	EntityType string
	Property   string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found (rule on %s.%s)", e.Variable, e.EntityType, e.Property)
}

// DependencyCycleError is returned when dependent rules of one type reference each other.
type DependencyCycleError struct {
	Type string
	// Path lists the properties of the cycle; the first property is repeated at the end.
	Path []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependent rules of %s form a cycle: %s", e.Type, strings.Join(e.Path, " -> "))
}
