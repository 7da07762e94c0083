package odatamock

import (
	"errors"

	"github.com/nlstn/go-odata-mock/internal/generator"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

// ParseError is returned by New when the metadata is empty or not well-formed XML.
type ParseError = metadata.ParseError

// VariableNotFoundError is returned by Generate when a "$ref:<name>" rule names a variable
// that is not defined in Rules.Variables.
type VariableNotFoundError = generator.VariableNotFoundError

// DependencyCycleError is returned by Generate when dependent rules of one type reference
// each other.
type DependencyCycleError = generator.DependencyCycleError

// ErrInvalidNumberOfEntities is returned by New for a negative entity count.
var ErrInvalidNumberOfEntities = errors.New("numberOfEntitiesToGenerate must not be negative")

func errorKind(err error) string {
	var parseErr *ParseError
	var variableErr *VariableNotFoundError
	var cycleErr *DependencyCycleError
	switch {
	case errors.As(err, &parseErr):
		return "ParseError"
	case errors.As(err, &variableErr):
		return "VariableNotFoundError"
	case errors.As(err, &cycleErr):
		return "DependencyCycleError"
	}
	return "other"
}
