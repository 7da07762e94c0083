package dataset

// Record is one generated entity: property name to value, plus the reserved
// MetadataKey entry and one DeferredLink per navigation property.
type Record map[string]any

// Dataset maps entity set names to their generated records in generation order.
type Dataset map[string][]Record

// MetadataKey is the record entry holding the entity's EntityMetadata.
const MetadataKey = "__metadata"

// EntityMetadata identifies an entity in OData v2 JSON.
type EntityMetadata struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// Deferred points at a related entity or collection that is not inlined.
type Deferred struct {
	URI string `json:"uri"`
}

// DeferredLink is the value stored under a navigation property name.
type DeferredLink struct {
	Deferred Deferred `json:"__deferred"`
}

// Metadata returns the record's EntityMetadata, if it has been attached.
func (r Record) Metadata() (EntityMetadata, bool) {
	m, ok := r[MetadataKey].(EntityMetadata)
	return m, ok
}

// Len returns the total number of records across all entity sets.
func (d Dataset) Len() int {
	n := 0
	for _, records := range d {
		n += len(records)
	}
	return n
}
