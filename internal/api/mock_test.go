package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blueprinthq/blueprintd/internal/assistant"
	"github.com/blueprinthq/blueprintd/internal/blueprint"
	"github.com/blueprinthq/blueprintd/internal/codemap"
	"github.com/blueprinthq/blueprintd/internal/config"
	"github.com/blueprinthq/blueprintd/internal/store"
)

type mockMapper struct {
	result *codemap.Result
	err    error

	lastPath     string
	lastPrompt   string
	lastMaxFiles int
}

func (m *mockMapper) MapCodebase(ctx context.Context, subpath string, requestMaxFiles int) (*codemap.Result, error) {
	m.lastPath = subpath
	m.lastMaxFiles = requestMaxFiles
	return m.result, m.err
}

func (m *mockMapper) MapFile(ctx context.Context, subpath string) (*codemap.Result, error) {
	m.lastPath = subpath
	return m.result, m.err
}

func (m *mockMapper) GenerateFromPrompt(ctx context.Context, prompt string, base *blueprint.Blueprint) (*codemap.Result, error) {
	m.lastPrompt = prompt
	return m.result, m.err
}

type mockStore struct {
	saved   *store.SavedInfo
	loaded  *blueprint.Blueprint
	entries []store.ListEntry
	err     error
}

func (m *mockStore) Save(bp *blueprint.Blueprint, filename string) (*store.SavedInfo, error) {
	return m.saved, m.err
}

func (m *mockStore) Load(filename string) (*blueprint.Blueprint, error) {
	return m.loaded, m.err
}

func (m *mockStore) List() ([]store.ListEntry, error) {
	return m.entries, m.err
}

func (m *mockStore) Delete(filename string) error {
	return m.err
}

func (m *mockStore) ExportSVG(content, filename string) (*store.SavedInfo, error) {
	return m.saved, m.err
}

type mockAssistant struct {
	reply       string
	suggestions []assistant.ConnectionSuggestion
	err         error
}

func (m *mockAssistant) Chat(ctx context.Context, message string, bp *blueprint.Blueprint) (string, error) {
	return m.reply, m.err
}

func (m *mockAssistant) AnalyzeDiagram(ctx context.Context, bp *blueprint.Blueprint) (string, error) {
	return m.reply, m.err
}

func (m *mockAssistant) SuggestConnections(ctx context.Context, bp *blueprint.Blueprint) ([]assistant.ConnectionSuggestion, string, error) {
	return m.suggestions, m.reply, m.err
}

func (m *mockAssistant) GenerateCode(ctx context.Context, comp *blueprint.Component, language string) (string, error) {
	return m.reply, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Port:        8080,
		Env:         "test",
		CORSOrigins: []string{"*"},
	}
}

// doJSON executes a request against the server and decodes the JSON reply
func doJSON(t *testing.T, s *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"body was: %s", rec.Body.String())
	}
	return rec, decoded
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
