package dedup

import (
	"encoding/json"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/nlstn/go-odata-mock/internal/dataset"
	"github.com/nlstn/go-odata-mock/internal/metadata"
)

// Records drops every record whose key tuple (set.Keys in order) equals that of an earlier
// record. The first occurrence wins and the survivors keep their relative order.
func Records(set *metadata.EntitySet, records []dataset.Record) []dataset.Record {
	seen := make(map[uint64][]dataset.Record, len(records))
	distinct := records[:0:0]

	for _, record := range records {
		tuple := keyTuple(set.Keys, record)
		sum := hashTuple(tuple)

		duplicate := false
		for _, prior := range seen[sum] {
			if reflect.DeepEqual(keyTuple(set.Keys, prior), tuple) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		seen[sum] = append(seen[sum], record)
		distinct = append(distinct, record)
	}
	return distinct
}

// Dataset deduplicates every entity set in data that is named in distinct.
func Dataset(schema *metadata.Schema, data dataset.Dataset, distinct []string) (removed int) {
	for _, name := range distinct {
		set, ok := schema.EntitySet(name)
		if !ok {
			continue
		}
		records, ok := data[name]
		if !ok {
			continue
		}
		kept := Records(set, records)
		removed += len(records) - len(kept)
		data[name] = kept
	}
	return removed
}

func keyTuple(keys []string, record dataset.Record) []any {
	tuple := make([]any, len(keys))
	for i, key := range keys {
		tuple[i] = record[key]
	}
	return tuple
}

func hashTuple(tuple []any) uint64 {
	d := xxhash.New()
	for _, v := range tuple {
		raw, err := json.Marshal(v)
		if err != nil {
			// Unencodable values share one bucket and are told apart by DeepEqual.
			raw = nil
		}
		_, _ = d.Write(raw)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
