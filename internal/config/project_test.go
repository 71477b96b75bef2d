package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "on", cfg.EventDecoratorSuffix)
	assert.Zero(t, cfg.MaxFiles)
	assert.Empty(t, cfg.ExcludeDirs)
}

func TestLoadProjectConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `version: "1.0"
max_files: 25
exclude_dirs:
  - vendor
  - migrations
event_decorator_suffix: subscribe
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(content), 0644))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxFiles)
	assert.Equal(t, []string{"vendor", "migrations"}, cfg.ExcludeDirs)
	assert.Equal(t, "subscribe", cfg.EventDecoratorSuffix)
}

func TestLoadProjectConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("{{not yaml"), 0644))

	_, err := LoadProjectConfig(dir)
	assert.Error(t, err)
}
