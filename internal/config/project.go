package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the per-scan-root configuration file
const ProjectFileName = ".blueprint.yaml"

// ProjectConfig represents a .blueprint.yaml file at the root of a scanned
// codebase. It lets a repository tune how it is mapped without touching
// server configuration.
type ProjectConfig struct {
	Version string `yaml:"version"`

	// Scan limits
	MaxFiles int `yaml:"max_files,omitempty"`

	// Directory names excluded from scans (replaces the server default)
	ExcludeDirs []string `yaml:"exclude_dirs,omitempty"`

	// Suffix matched (case-insensitively) against decorator callee names to
	// detect event-subscription handlers, e.g. "on" matches socketio.on(...)
	EventDecoratorSuffix string `yaml:"event_decorator_suffix,omitempty"`
}

// DefaultProjectConfig returns sensible defaults
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version:              "1.0",
		EventDecoratorSuffix: "on",
	}
}

// LoadProjectConfig loads the project config from a scan root directory.
// Returns defaults when no project file exists; a malformed file is an error.
func LoadProjectConfig(root string) (*ProjectConfig, error) {
	path := filepath.Join(root, ProjectFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.EventDecoratorSuffix == "" {
		cfg.EventDecoratorSuffix = "on"
	}
	return cfg, nil
}
