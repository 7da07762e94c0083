package keys

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

const (
	datetimePrefix = "datetime'"
	guidPrefix     = "guid'"
	datetimeLayout = "2006-01-02T15:04:05"
)

// componentUnescaper restores the characters url.QueryEscape encodes but URI components
// keep literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent percent-encodes s for use inside a URI path segment, leaving
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped.
func EscapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// FormatKeyValue renders one key value as an OData v2 literal for edmType.
func FormatKeyValue(edmType string, value any) string {
	switch edmType {
	case metadata.EdmString:
		return EscapeComponent("'" + formatRaw(value) + "'")
	case metadata.EdmDateTime:
		literal, ok := dateTimeLiteral(value)
		if !ok {
			return formatRaw(value)
		}
		return EscapeComponent(literal)
	case metadata.EdmGuid:
		return guidPrefix + formatRaw(value) + "'"
	}
	return formatRaw(value)
}

// dateTimeLiteral converts a "/Date(<ms>)/" value into datetime'YYYY-MM-DDTHH:MM:SS'.
func dateTimeLiteral(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	ms, ok := parseJSONDate(s)
	if !ok {
		return "", false
	}
	return datetimePrefix + time.UnixMilli(ms).UTC().Format(datetimeLayout) + "'", true
}

func parseJSONDate(s string) (int64, bool) {
	inner, found := strings.CutPrefix(s, "/Date(")
	if !found {
		return 0, false
	}
	inner, found = strings.CutSuffix(inner, ")/")
	if !found {
		return 0, false
	}
	sign := ""
	if rest, negative := strings.CutPrefix(inner, "-"); negative {
		sign, inner = "-", rest
	}
	// Offsets such as "+0000" are not part of the instant.
	if i := strings.IndexAny(inner, "+-"); i >= 0 {
		inner = inner[:i]
	}
	ms, err := strconv.ParseInt(sign+inner, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

func formatRaw(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprint(value)
}

// Predicate builds the key predicate of record: the bare value for a single key,
// otherwise name=value pairs joined by ",".
func Predicate(set *metadata.EntitySet, record dataset.Record) string {
	if len(set.Keys) == 1 {
		key := set.Keys[0]
		return FormatKeyValue(set.KeysType[key], record[key])
	}

	parts := make([]string, 0, len(set.Keys))
	for _, key := range set.Keys {
		parts = append(parts, key+"="+FormatKeyValue(set.KeysType[key], record[key]))
	}
	return strings.Join(parts, ",")
}

// EntityURI returns root + set name + "(" + predicate + ")".
func EntityURI(root string, set *metadata.EntitySet, record dataset.Record) string {
	return fmt.Sprintf("%s%s(%s)", root, set.Name, Predicate(set, record))
}

// NormalizeRootURI drops any query or fragment and guarantees a trailing "/".
func NormalizeRootURI(root string) string {
	if i := strings.IndexAny(root, "?#"); i >= 0 {
		root = root[:i]
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root
}

// Attach sets __metadata on every record in data and replaces every navigation property
// with a deferred link. Entity sets without generated records are skipped.
func Attach(schema *metadata.Schema, data dataset.Dataset, root string) {
	for _, set := range schema.EntitySets {
		records, ok := data[set.Name]
		if !ok {
			continue
		}
		typeName := set.QualifiedType()
		for _, record := range records {
			uri := EntityURI(root, set, record)
			record[dataset.MetadataKey] = dataset.EntityMetadata{URI: uri, Type: typeName}
			for _, nav := range set.NavigationProperties {
				record[nav.Name] = dataset.DeferredLink{Deferred: dataset.Deferred{URI: uri + "/" + nav.Name}}
			}
		}
	}
}
