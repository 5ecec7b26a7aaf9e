// Package artifact holds the small file-load/persist helpers every ingestion
// stage uses to read and write its JSON-keyed artifact (RawText,
// EntityRecord, and friends) on disk.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and decodes the JSON artifact at path into a fresh map. A
// missing file is not an error: it returns an empty map, matching spec
// §4.1's "missing downstream artifact => D = empty".
func Load[V any](path string) (map[string]V, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]V{}, nil
		}
		return nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return map[string]V{}, nil
	}
	out := make(map[string]V)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("artifact: decode %s: %w", path, err)
	}
	return out, nil
}

// Merge copies every entry of patch into base, overwriting any existing key
// (last-write-wins, per spec §4.2's persist() contract).
func Merge[V any](base, patch map[string]V) {
	for k, v := range patch {
		base[k] = v
	}
}

// LoadOne reads and decodes the JSON value at path into v.
func LoadOne(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifact: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("artifact: decode %s: %w", path, err)
	}
	return nil
}

// PersistOne writes a single value to path as indented JSON, creating the
// parent directory if needed. Used by stages whose idempotence marker is a
// per-item file rather than a shared keyed artifact (e.g. C4).
func PersistOne[V any](path string, v V) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir for %s: %w", path, err)
	}
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return nil
}

// Persist writes m to path as indented JSON, creating the parent directory
// if needed.
func Persist[V any](path string, m map[string]V) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir for %s: %w", path, err)
	}
	raw, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return nil
}
