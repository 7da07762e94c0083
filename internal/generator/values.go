package generator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nlstn/go-odata-mock/internal/metadata"
	"github.com/nlstn/go-odata-mock/internal/random"
)

// Random scopes. Integer types share one sequence.
const (
	scopeString         = "String"
	scopeDateTime       = "DateTime"
	scopeDateTimeOffset = "DateTimeOffset"
	scopeInt            = "Int"
	scopeDecimal        = "Decimal"
	scopeBoolean        = "Boolean"
	scopeByte           = "Byte"
	scopeSByte          = "SByte"
	scopeDouble         = "Double"
	scopeSingle         = "Single"
	scopeTime           = "Time"
	scopeGuid           = "Guid"
	scopeBinary         = "Binary"

	// scopePredefined is used for list rule picks so they never disturb type defaults.
	scopePredefined = "$predefined"
)

const guidTemplate = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"

// primitiveValue generates the default value for a primitive kind. ok is false for
// KindComplex, which the caller resolves against the schema.
func primitiveValue(r *random.Engine, kind metadata.EdmKind, name string, index int) (value any, ok bool) {
	switch kind {
	case metadata.KindString:
		return fmt.Sprintf("%s %d", name, index), true
	case metadata.KindDateTime:
		return fmt.Sprintf("/Date(%d)/", randomDate(r, scopeDateTime).UnixMilli()), true
	case metadata.KindDateTimeOffset:
		return fmt.Sprintf("/Date(%d+0000)/", randomDate(r, scopeDateTimeOffset).UnixMilli()), true
	case metadata.KindInt16, metadata.KindInt32, metadata.KindInt64:
		return int64(r.Intn(scopeInt, 10000)), true
	case metadata.KindDecimal:
		return float64(r.Intn(scopeDecimal, 1000000)) / 100, true
	case metadata.KindBoolean:
		return r.Float(scopeBoolean) < 0.5, true
	case metadata.KindByte:
		return int64(r.Intn(scopeByte, 10)), true
	case metadata.KindSByte:
		return int64(r.Intn(scopeSByte, 10)), true
	case metadata.KindDouble:
		return r.Float(scopeDouble) * 10, true
	case metadata.KindSingle:
		return r.Float(scopeSingle) * 1000000000, true
	case metadata.KindTime:
		return fmt.Sprintf("PT%dH%dM%dS", r.Intn(scopeTime, 23), r.Intn(scopeTime, 59), r.Intn(scopeTime, 59)), true
	case metadata.KindGuid:
		return randomGuid(r), true
	case metadata.KindBinary:
		return randomBinary(r), true
	case metadata.KindComplex:
		return nil, false
	}
	return nil, false
}

// fallbackIndex replaces a missing record index with a pseudo random 4-5 digit number.
func fallbackIndex(r *random.Engine) int {
	return r.Intn(scopeString, 10000) + 101
}

// randomDate draws year, day and month in that order; day 0 rolls back to the last day
// of the previous month.
func randomDate(r *random.Engine, scope string) time.Time {
	year := 2000 + r.Intn(scope, 20)
	day := r.Intn(scope, 30)
	month := r.Intn(scope, 12)
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
}

func randomGuid(r *random.Engine) string {
	var id uuid.UUID
	nibble := 0
	for _, c := range strings.ReplaceAll(guidTemplate, "-", "") {
		var v byte
		switch c {
		case 'x':
			v = byte(r.Intn(scopeGuid, 16))
		case 'y':
			v = byte(r.Intn(scopeGuid, 16))&0x3 | 0x8
		default:
			v = byte(c - '0')
		}
		if nibble%2 == 0 {
			id[nibble/2] = v << 4
		} else {
			id[nibble/2] |= v
		}
		nibble++
	}
	return id.String()
}

// randomBinary renders a signed 32-bit mask as its 32 bits, most significant first.
func randomBinary(r *random.Engine) string {
	mask := int32(math.Floor(-2147483648 + r.Float(scopeBinary)*4294967295))
	shifted := uint32(mask)
	var b strings.Builder
	b.Grow(32)
	for i := 0; i < 32; i++ {
		if shifted>>31 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		shifted <<= 1
	}
	return b.String()
}

// sameValue compares rule keys with generated values; numbers compare by value so that
// JSON-decoded float64 keys match generated int64 values.
func sameValue(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	if aNum != bNum {
		return false
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
