package keys

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nlstn/go-odata-mock/internal/metadata"
)

// ParsePredicate splits a key predicate into key name to literal. A predicate without "="
// is the bare value of the single key in keys. Literals are percent-decoded but keep their
// OData form ('text', guid'...', datetime'...').
//
// Example: "ProductID=1,Currency='EUR'" -> {"ProductID": "1", "Currency": "'EUR'"}
func ParsePredicate(predicate string, keys []string) (map[string]string, error) {
	keyMap := make(map[string]string)

	if !strings.Contains(predicate, "=") {
		if len(keys) != 1 {
			return nil, fmt.Errorf("entity requires composite key, but single key provided: %s", predicate)
		}
		literal, err := url.PathUnescape(predicate)
		if err != nil {
			return nil, fmt.Errorf("invalid key value %q: %w", predicate, err)
		}
		keyMap[keys[0]] = literal
		return keyMap, nil
	}

	// Parse composite key format: key1=value1,key2=value2
	for _, pair := range strings.Split(predicate, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid composite key format: %s", predicate)
		}

		keyName := strings.TrimSpace(parts[0])
		literal, err := url.PathUnescape(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid value for key %s: %w", keyName, err)
		}
		keyMap[keyName] = literal
	}

	for _, key := range keys {
		if _, ok := keyMap[key]; !ok {
			return nil, fmt.Errorf("key property '%s' not found in %s", key, predicate)
		}
	}
	return keyMap, nil
}

// ParseKeyValue converts a literal produced by FormatKeyValue back into the generated value
// representation for edmType.
func ParseKeyValue(edmType, literal string) (any, error) {
	switch edmType {
	case metadata.EdmString:
		return unquote(literal, "'")
	case metadata.EdmGuid:
		return unquote(literal, guidPrefix)
	case metadata.EdmDateTime:
		inner, err := unquote(literal, datetimePrefix)
		if err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation(datetimeLayout, inner, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid datetime literal %q: %w", literal, err)
		}
		return fmt.Sprintf("/Date(%d)/", t.UnixMilli()), nil
	}

	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return f, nil
	}
	if b, err := strconv.ParseBool(literal); err == nil {
		return b, nil
	}
	return literal, nil
}

func unquote(literal, prefix string) (string, error) {
	if len(literal) < len(prefix)+1 || !strings.HasPrefix(literal, prefix) || !strings.HasSuffix(literal, "'") {
		return "", fmt.Errorf("invalid key literal %q: expected %s...'", literal, prefix)
	}
	return literal[len(prefix) : len(literal)-1], nil
}
