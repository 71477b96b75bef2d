package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueprinthq/blueprintd/internal/config"
)

type stubClient struct {
	name      Provider
	available bool
	resp      *Response
	err       error
	calls     int
}

func (s *stubClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubClient) Name() Provider  { return s.name }
func (s *stubClient) Available() bool { return s.available }

func TestNewRouterNoProviders(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewRouter(cfg)
	assert.Error(t, err)
}

func TestNewRouterDefaultProviderFirst(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "ollama",
			AnthropicKey:    "key",
			AnthropicModel:  "claude-sonnet-4-20250514",
			OllamaURL:       "http://localhost:11434",
			OllamaModel:     "llama3.1",
		},
	}
	r, err := NewRouter(cfg)
	require.NoError(t, err)
	require.Len(t, r.clients, 2)
	assert.Equal(t, ProviderOllama, r.clients[0].Name())
	assert.Equal(t, ProviderAnthropic, r.clients[1].Name())
}

func TestCompleteFallsBackToNextProvider(t *testing.T) {
	failing := &stubClient{name: ProviderAnthropic, available: true, err: errors.New("status 401: bad key")}
	working := &stubClient{name: ProviderOllama, available: true, resp: &Response{Content: "ok"}}
	r := NewRouterWithClients(failing, working)

	resp, err := r.Complete(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, failing.calls, "non-retryable error should not be retried")
}

func TestCompleteSkipsUnavailableProviders(t *testing.T) {
	down := &stubClient{name: ProviderOllama, available: false, resp: &Response{Content: "never"}}
	up := &stubClient{name: ProviderAnthropic, available: true, resp: &Response{Content: "ok"}}
	r := NewRouterWithClients(down, up)

	resp, err := r.Complete(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Zero(t, down.calls)
}

func TestCompleteAllProvidersFail(t *testing.T) {
	failing := &stubClient{name: ProviderAnthropic, available: true, err: errors.New("status 400: bad request")}
	r := NewRouterWithClients(failing)

	_, err := r.Complete(context.Background(), &Request{})
	assert.Error(t, err)
}

func TestCompleteNoAvailableProviders(t *testing.T) {
	r := NewRouterWithClients(&stubClient{name: ProviderOllama, available: false})
	_, err := r.Complete(context.Background(), &Request{})
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(errors.New("anthropic returned status 401: unauthorized")))
	assert.True(t, isRetryableError(errors.New("anthropic returned status 429: slow down")))
	assert.True(t, isRetryableError(errors.New("ollama returned status 503: overloaded")))
	assert.True(t, isRetryableError(errors.New("context deadline exceeded")))
	assert.True(t, isRetryableError(errors.New("dial tcp: connection refused")))
}

func TestHealthCheck(t *testing.T) {
	r := NewRouterWithClients(&stubClient{name: ProviderOllama, available: false})
	assert.Error(t, r.HealthCheck())

	r = NewRouterWithClients(&stubClient{name: ProviderOllama, available: true})
	assert.NoError(t, r.HealthCheck())
}
