package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blueprinthq/blueprintd/internal/config"
)

// Retry configuration
const (
	defaultMaxRetries = 2
	initialBackoff    = time.Second
	maxBackoff        = 10 * time.Second
)

// Router sends completion requests to the first available provider, in
// configured preference order.
type Router struct {
	clients []Client
}

// NewRouter builds a router from application config. The default provider is
// tried first; at least one provider must be configured.
func NewRouter(cfg *config.Config) (*Router, error) {
	byName := make(map[Provider]Client)
	if cfg.LLM.AnthropicKey != "" {
		byName[ProviderAnthropic] = NewAnthropicClient(cfg.LLM.AnthropicKey, cfg.LLM.AnthropicModel)
	}
	if cfg.LLM.OllamaURL != "" {
		byName[ProviderOllama] = NewOllamaClient(cfg.LLM.OllamaURL, cfg.LLM.OllamaModel)
	}
	if len(byName) == 0 {
		return nil, fmt.Errorf("no completion providers configured")
	}

	var clients []Client
	if c, ok := byName[Provider(cfg.LLM.DefaultProvider)]; ok {
		clients = append(clients, c)
	}
	for _, p := range []Provider{ProviderAnthropic, ProviderOllama} {
		if c, ok := byName[p]; ok && string(p) != cfg.LLM.DefaultProvider {
			clients = append(clients, c)
		}
	}

	return &Router{clients: clients}, nil
}

// NewRouterWithClients builds a router over explicit clients, in order
func NewRouterWithClients(clients ...Client) *Router {
	return &Router{clients: clients}
}

// Complete tries each provider in preference order, retrying transient
// failures, and returns the first successful response.
func (r *Router) Complete(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	for _, client := range r.clients {
		if !client.Available() {
			log.Debug().Str("provider", string(client.Name())).Msg("provider not available, trying next")
			continue
		}

		resp, err := r.completeWithRetry(ctx, client, req)
		if err != nil {
			log.Warn().Err(err).Str("provider", string(client.Name())).Msg("provider failed, trying next")
			lastErr = err
			continue
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all providers failed, last error: %w", lastErr)
	}
	return nil, fmt.Errorf("no available completion providers")
}

func (r *Router) completeWithRetry(ctx context.Context, client Client, req *Request) (*Response, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !isRetryableError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryableError reports whether a completion failure is worth retrying.
// Network trouble, timeouts, 5xx and rate limits are; other 4xx are not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "deadline exceeded"),
		strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "connection reset"):
		return true
	case strings.Contains(errStr, "status 429"),
		strings.Contains(errStr, "rate limit"):
		return true
	case strings.Contains(errStr, "status 5"):
		return true
	case strings.Contains(errStr, "status 4"):
		return false
	}
	return true
}

// HealthCheck verifies at least one provider is available
func (r *Router) HealthCheck() error {
	for _, client := range r.clients {
		if client.Available() {
			return nil
		}
	}
	return fmt.Errorf("no completion providers available")
}
