package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeJSONFile encodes v and replaces the file at abs atomically.
func writeJSONFile(abs string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", filepath.Base(abs), err)
	}
	return writeAtomic(abs, data)
}

func writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".rixa-tmp-*")
	if err != nil {
		return fmt.Errorf("export: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("export: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("export: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("export: rename: %w", err)
	}
	success = true
	return nil
}
