package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile defines a lookup agent's prompt and capabilities.
type Profile struct {
	Name         string   `yaml:"name"`
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	SystemPrompt string   `yaml:"system_prompt"`
	QuerySuffix  string   `yaml:"query_suffix"`
	Tools        []string `yaml:"tools"`
	MaxIter      int      `yaml:"max_iterations"`
}

// LoadProfile reads an agent profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadProfileOverride reads {dir}/{name}.yaml when present and merges its
// non-empty fields over base. A missing file returns base unchanged.
func LoadProfileOverride(dir, name string, base Profile) (Profile, error) {
	if dir == "" {
		return base, nil
	}
	p, err := LoadProfile(filepath.Join(dir, name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		return base, err
	}

	merged := base
	if p.Name != "" {
		merged.Name = p.Name
	}
	if p.Provider != "" {
		merged.Provider = p.Provider
	}
	if p.Model != "" {
		merged.Model = p.Model
	}
	if p.SystemPrompt != "" {
		merged.SystemPrompt = p.SystemPrompt
	}
	if p.QuerySuffix != "" {
		merged.QuerySuffix = p.QuerySuffix
	}
	if len(p.Tools) > 0 {
		merged.Tools = p.Tools
	}
	if p.MaxIter > 0 {
		merged.MaxIter = p.MaxIter
	}
	return merged, nil
}
