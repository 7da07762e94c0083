package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/nlstn/go-odata-mock/internal/dataset"
)

// FileExtension is appended to the entity set name of every written file.
const FileExtension = ".json"

// WriteDir writes one "<EntitySet>.json" array per entity set into dir, creating dir if
// needed. It returns the written paths sorted by entity set name.
func WriteDir(dir string, data dataset.Dataset) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	slices.Sort(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name+FileExtension)
		if err := writeFile(path, data[name]); err != nil {
			return paths, fmt.Errorf("failed to write entity set %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, records []dataset.Record) error {
	if records == nil {
		records = []dataset.Record{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// Write encodes the whole dataset as one JSON object keyed by entity set name.
func Write(w io.Writer, data dataset.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}
