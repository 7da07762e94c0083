package random

import "math"

const (
	multiplier = 25214903917
	modulus    = 281474976710655
	increment  = 11
)

// Engine is a deterministic number source with one independent sequence per scope.
// Scopes are usually EDM type families ("Int", "DateTime") so that adding a property of
// one type never shifts the values drawn for another type.
//
// Engine is not safe for concurrent use; a generation run owns exactly one engine.
type Engine struct {
	seeds map[string]float64
}

// New returns an engine with every scope at its initial state.
func New() *Engine {
	return &Engine{seeds: make(map[string]float64)}
}

// Float returns the next value of the scope's sequence in [0,1).
func (e *Engine) Float(scope string) float64 {
	seed := math.Mod((e.seeds[scope]+increment)*multiplier, modulus)
	e.seeds[scope] = seed
	return seed / modulus
}

// Intn returns floor(Float(scope) * n), a value in [0,n).
func (e *Engine) Intn(scope string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(e.Float(scope) * float64(n)))
}

// Pick returns a uniformly drawn element of values, or nil when values is empty.
// An empty slice does not advance the scope.
func (e *Engine) Pick(scope string, values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[e.Intn(scope, len(values))]
}

// Reset returns every scope to its initial state.
func (e *Engine) Reset() {
	clear(e.seeds)
}
