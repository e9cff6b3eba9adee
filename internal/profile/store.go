package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store reads and writes profile records as JSON files.
type Store struct{}

// PathFor returns {root}/{provider}__{slug}.json.
func (Store) PathFor(provider, slug, root string) string {
	return filepath.Join(root, provider+"__"+slug+".json")
}

// Save writes record to path, creating parent directories and replacing any
// existing file. It returns record unchanged.
func (Store) Save(record Record, path string) (Record, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating profile directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing profile %s: %w", path, err)
	}
	return record, nil
}

// Load reads the record stored at path. A missing file yields ErrNotFound.
func (Store) Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return record, nil
}
