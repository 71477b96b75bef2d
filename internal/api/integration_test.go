package api

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueprinthq/blueprintd/internal/codemap"
	"github.com/blueprinthq/blueprintd/internal/store"
)

// newIntegrationServer wires the real mapper and store over temp dirs
func newIntegrationServer(t *testing.T) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	mapper, err := codemap.New(root, 200, nil, nil)
	require.NoError(t, err)

	fileStore, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return NewServer(testConfig(), mapper, fileStore, nil, nil), root
}

func TestMapCodebaseEndToEnd(t *testing.T) {
	s, root := newIntegrationServer(t)

	source := `
def fetch():
    return parse()

def parse():
    return 1
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte(source), 0o644))

	rec, body := doJSON(t, s, "POST", "/api/code/map", map[string]interface{}{"path": "."})
	expectStatus(t, rec, http.StatusOK)
	require.Equal(t, true, body["success"])

	bp := body["blueprint"].(map[string]interface{})
	components := bp["components"].([]interface{})
	require.Len(t, components, 2)

	connections := bp["connections"].([]interface{})
	require.Len(t, connections, 1)
	edge := connections[0].(map[string]interface{})
	assert.Equal(t, "app-fetch-out", edge["from"])
	assert.Equal(t, "app-parse-in", edge["to"])

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, 1.0, stats["files_scanned"])
}

func TestMapCodebaseEscapeRejectedEndToEnd(t *testing.T) {
	s, _ := newIntegrationServer(t)

	rec, _ := doJSON(t, s, "POST", "/api/code/map", map[string]interface{}{"path": "../outside"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestMapFileEndToEnd(t *testing.T) {
	s, root := newIntegrationServer(t)

	handler := `
def start():
    run()

def run():
    pass
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "bot.py"), []byte(handler), 0o644))

	rec, body := doJSON(t, s, "POST", "/api/code/map-file", map[string]interface{}{"path": "bot.py"})
	expectStatus(t, rec, http.StatusOK)

	bp := body["blueprint"].(map[string]interface{})
	components := bp["components"].([]interface{})
	require.Len(t, components, 2)
	first := components[0].(map[string]interface{})
	assert.Equal(t, "start()", first["name"])
}

func TestBlueprintLifecycleEndToEnd(t *testing.T) {
	s, _ := newIntegrationServer(t)

	// save
	rec, body := doJSON(t, s, "POST", "/api/blueprints", map[string]interface{}{
		"filename":  "design",
		"blueprint": mappedResult().Blueprint,
	})
	expectStatus(t, rec, http.StatusCreated)
	filename := body["filename"].(string)
	assert.Equal(t, "design.json", filename)

	// list
	rec, body = doJSON(t, s, "GET", "/api/blueprints", nil)
	expectStatus(t, rec, http.StatusOK)
	require.Len(t, body["blueprints"], 1)

	// load
	rec, body = doJSON(t, s, "GET", "/api/blueprints/"+filename, nil)
	expectStatus(t, rec, http.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["components"], 1)

	// delete
	rec, _ = doJSON(t, s, "DELETE", "/api/blueprints/"+filename, nil)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = doJSON(t, s, "GET", "/api/blueprints/"+filename, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestGeneratePromptEndToEnd(t *testing.T) {
	s, _ := newIntegrationServer(t)

	rec, body := doJSON(t, s, "POST", "/api/blueprints/generate", map[string]interface{}{
		"prompt": "an ecommerce shop with checkout",
	})
	expectStatus(t, rec, http.StatusOK)

	bp := body["blueprint"].(map[string]interface{})
	metadata := bp["metadata"].(map[string]interface{})
	assert.Equal(t, "prompt_mapper", metadata["generated_by"])
	components := bp["components"].([]interface{})
	assert.NotEmpty(t, components)
}
