package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return s
}

func validBlueprint() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		Components: []blueprint.Component{
			{ID: "api", Type: blueprint.TypeModule, Name: "API",
				Outputs: blueprint.DefaultOutputs(), Inputs: blueprint.DefaultInputs()},
			{ID: "db", Type: blueprint.TypeModule, Name: "Database",
				Outputs: blueprint.DefaultOutputs(), Inputs: blueprint.DefaultInputs()},
		},
		Connections: []blueprint.Connection{{From: "api-out", To: "db-in"}},
	}
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "my_diagram.json", secureFilename("my diagram.json"))
	assert.Equal(t, "etcpasswd", secureFilename("../../etc/passwd"))
	assert.Equal(t, "a.json", secureFilename("a.json"))
	assert.Empty(t, secureFilename("../.."))
	assert.Empty(t, secureFilename("???"))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	info, err := s.Save(validBlueprint(), "my design")
	require.NoError(t, err)
	assert.Equal(t, "my_design.json", info.Filename)
	assert.Positive(t, info.Size)

	loaded, err := s.Load("my_design.json")
	require.NoError(t, err)
	require.Len(t, loaded.Components, 2)
	assert.Equal(t, "1.0", loaded.Metadata["version"])
	assert.NotEmpty(t, loaded.Metadata["saved_at"])
}

func TestSaveGeneratesTimestampedName(t *testing.T) {
	s := newTestStore(t)

	info, err := s.Save(validBlueprint(), "")
	require.NoError(t, err)
	assert.Equal(t, "blueprint_20260314_092653.json", info.Filename)
}

func TestSaveRejectsInvalidBlueprint(t *testing.T) {
	s := newTestStore(t)

	bp := validBlueprint()
	bp.Connections = append(bp.Connections, blueprint.Connection{From: "ghost-out", To: "db-in"})
	_, err := s.Save(bp, "bad")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("nothing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "broken.json"), []byte("{not json"), 0o644))

	_, err := s.Load("broken.json")
	assert.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(validBlueprint(), "older")
	require.NoError(t, err)
	older := filepath.Join(s.dir, "older.json")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	_, err = s.Save(validBlueprint(), "newer")
	require.NoError(t, err)

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer.json", entries[0].Filename)
	assert.Equal(t, "older.json", entries[1].Filename)
	assert.Equal(t, "1.0", entries[0].Metadata["version"])
}

func TestListIgnoresNonJSONFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "export.svg"), []byte("<svg/>"), 0o644))

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(validBlueprint(), "doomed")
	require.NoError(t, err)

	require.NoError(t, s.Delete("doomed.json"))
	assert.ErrorIs(t, s.Delete("doomed.json"), ErrNotFound)
}

func TestExportSVG(t *testing.T) {
	s := newTestStore(t)

	info, err := s.ExportSVG("<svg></svg>", "diagram")
	require.NoError(t, err)
	assert.Equal(t, "diagram.svg", info.Filename)

	data, err := os.ReadFile(info.Path)
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(data))
}

func TestExportSVGDefaultName(t *testing.T) {
	s := newTestStore(t)

	info, err := s.ExportSVG("<svg/>", "")
	require.NoError(t, err)
	assert.Equal(t, "blueprint_20260314_092653.svg", info.Filename)
}
