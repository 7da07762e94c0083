package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL builds the table for an entity set. Properties named in text get a TEXT
// column regardless of their EDM type.
func createTableSQL(dialect, table string, props []metadata.Property, text map[string]bool) string {
	var sql strings.Builder
	sql.WriteString("CREATE TABLE ")
	sql.WriteString(quoteIdent(table))
	sql.WriteString(" (")

	seen := make(map[string]bool, len(props))
	for _, prop := range props {
		if seen[prop.Name] {
			continue
		}
		seen[prop.Name] = true
		sql.WriteString(quoteIdent(prop.Name))
		sql.WriteString(" ")
		if text[prop.Name] {
			sql.WriteString("TEXT")
		} else {
			sql.WriteString(columnType(dialect, prop))
		}
		sql.WriteString(", ")
	}
	sql.WriteString(quoteIdent(URIColumn))
	sql.WriteString(" TEXT)")
	return sql.String()
}

// columnType maps an EDM type to a column type. Date and time values keep their
// /Date(ms)/ and PT..H..M..S wire forms and are stored as text.
func columnType(dialect string, prop metadata.Property) string {
	postgres := dialect == "postgres" || dialect == "postgresql"

	switch prop.Kind() {
	case metadata.KindInt16, metadata.KindInt32, metadata.KindInt64, metadata.KindByte, metadata.KindSByte:
		if postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case metadata.KindDecimal:
		precision, scale, ok := numericBounds(prop)
		if !ok {
			return "NUMERIC"
		}
		return fmt.Sprintf("NUMERIC(%d,%d)", precision, scale)
	case metadata.KindBoolean:
		return "BOOLEAN"
	case metadata.KindDouble, metadata.KindSingle:
		if postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	}
	return "TEXT"
}

// numericBounds returns the declared precision and scale of a Decimal property.
func numericBounds(prop metadata.Property) (precision, scale int, ok bool) {
	precision, perr := strconv.Atoi(prop.Precision)
	scale, serr := strconv.Atoi(prop.Scale)
	if perr != nil || serr != nil || precision <= 0 || scale < 0 || scale > precision {
		return 0, 0, false
	}
	return precision, scale, true
}

// textColumns lists the typed properties holding at least one value the typed column
// cannot store, such as a string placed in an Int32 property by a predefined rule.
func textColumns(props []metadata.Property, records []dataset.Record) map[string]bool {
	text := make(map[string]bool)
	for _, prop := range props {
		if text[prop.Name] {
			continue
		}
		for _, record := range records {
			if !fitsColumn(prop.Kind(), record[prop.Name]) {
				text[prop.Name] = true
				break
			}
		}
	}
	return text
}

func fitsColumn(kind metadata.EdmKind, v any) bool {
	if v == nil {
		return true
	}
	switch kind {
	case metadata.KindInt16, metadata.KindInt32, metadata.KindInt64, metadata.KindByte, metadata.KindSByte:
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n) && !math.IsInf(n, 0)
		}
		return false
	case metadata.KindDecimal, metadata.KindDouble, metadata.KindSingle:
		switch n := v.(type) {
		case int, int32, int64, float32:
			return true
		case float64:
			return !math.IsNaN(n) && !math.IsInf(n, 0)
		}
		return false
	case metadata.KindBoolean:
		_, ok := v.(bool)
		return ok
	}
	return true
}
