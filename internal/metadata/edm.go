package metadata

// EdmKind is the closed set of primitive types the generator understands, plus a
// fallback for everything else, which is treated as a complex type reference.
type EdmKind int

const (
	KindComplex EdmKind = iota
	KindString
	KindDateTime
	KindDateTimeOffset
	KindInt16
	KindInt32
	KindInt64
	KindDecimal
	KindBoolean
	KindByte
	KindSByte
	KindDouble
	KindSingle
	KindTime
	KindGuid
	KindBinary
)

var primitiveKinds = map[string]EdmKind{
	"String":         KindString,
	"DateTime":       KindDateTime,
	"DateTimeOffset": KindDateTimeOffset,
	"Int16":          KindInt16,
	"Int32":          KindInt32,
	"Int64":          KindInt64,
	"Decimal":        KindDecimal,
	"Boolean":        KindBoolean,
	"Byte":           KindByte,
	"SByte":          KindSByte,
	"Double":         KindDouble,
	"Single":         KindSingle,
	"Time":           KindTime,
	"Guid":           KindGuid,
	"Binary":         KindBinary,
}

// KindOf classifies the bare type name that follows the last "." of a qualified type.
// The namespace is not consulted, so an aliased Edm namespace still yields primitives.
func KindOf(typeName string) EdmKind {
	if kind, ok := primitiveKinds[typeName]; ok {
		return kind
	}
	return KindComplex
}

// String returns the EDM type name, or "Complex" for the fallback kind.
func (k EdmKind) String() string {
	for name, kind := range primitiveKinds {
		if kind == k {
			return name
		}
	}
	return "Complex"
}

// Qualified EDM type names used in key type comparisons.
const (
	EdmString   = "Edm.String"
	EdmDateTime = "Edm.DateTime"
	EdmGuid     = "Edm.Guid"
)
