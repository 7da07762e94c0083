package generator

import "github.com/nlstn/go-odata-mock/internal/metadata"

const (
	unvisited = iota
	visiting
	visited
)

// generationOrder returns props reordered so that every property referenced by a dependent
// rule comes before the property that reads it. Unrelated properties keep their declared
// order, which keeps random draws identical to a plain declared-order pass.
func generationOrder(typeName string, props []metadata.Property, rules map[string]Rule) ([]metadata.Property, error) {
	byName := make(map[string]int, len(props))
	for i, p := range props {
		if _, exists := byName[p.Name]; !exists {
			byName[p.Name] = i
		}
	}

	state := make([]int, len(props))
	order := make([]metadata.Property, 0, len(props))
	var path []string

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visited:
			return nil
		case visiting:
			return &DependencyCycleError{Type: typeName, Path: cyclePath(path, props[i].Name)}
		}

		state[i] = visiting
		path = append(path, props[i].Name)

		if rule, ok := rules[props[i].Name]; ok && rule.Kind == RuleDependent {
			if ref, found := byName[rule.Reference]; found {
				if err := visit(ref); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[i] = visited
		order = append(order, props[i])
		return nil
	}

	for i := range props {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// cyclePath trims path to the cycle starting at name and closes it.
func cyclePath(path []string, name string) []string {
	for i, p := range path {
		if p == name {
			cycle := append([]string{}, path[i:]...)
			return append(cycle, name)
		}
	}
	return []string{name, name}
}
