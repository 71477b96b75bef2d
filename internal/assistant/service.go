// Package assistant exposes the diagram-aware completion features: chat,
// analysis, connection suggestions, code generation and blueprint drafts.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
	"github.com/blueprinthq/blueprintd/internal/codemap"
	"github.com/blueprinthq/blueprintd/internal/llm"
)

// Completer is the slice of the completion router the assistant needs
type Completer interface {
	Complete(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// ConnectionSuggestion is one proposed edge with its rationale
type ConnectionSuggestion struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Service wraps a completion provider with diagram-specific prompting
type Service struct {
	client Completer
}

// New creates an assistant over the given completion client
func New(client Completer) *Service {
	return &Service{client: client}
}

// Chat answers a free-form user message, grounded in the current diagram
// when one is provided.
func (s *Service) Chat(ctx context.Context, message string, bp *blueprint.Blueprint) (string, error) {
	resp, err := s.client.Complete(ctx, &llm.Request{
		System:    chatSystemPrompt(bp),
		Messages:  []llm.Message{{Role: "user", Content: message}},
		MaxTokens: 2048,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return resp.Content, nil
}

// AnalyzeDiagram returns a prose review of the blueprint
func (s *Service) AnalyzeDiagram(ctx context.Context, bp *blueprint.Blueprint) (string, error) {
	resp, err := s.client.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: analyzePrompt(bp)}},
		MaxTokens: 2048,
	})
	if err != nil {
		return "", fmt.Errorf("diagram analysis failed: %w", err)
	}
	return resp.Content, nil
}

// SuggestConnections asks for missing edges. The model's answer may wrap the
// JSON in prose; the first array found is parsed and an unparsable answer
// yields an empty suggestion list alongside the raw text.
func (s *Service) SuggestConnections(ctx context.Context, bp *blueprint.Blueprint) ([]ConnectionSuggestion, string, error) {
	resp, err := s.client.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: suggestPrompt(bp)}},
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, "", fmt.Errorf("connection suggestion failed: %w", err)
	}

	suggestions := []ConnectionSuggestion{}
	raw := extractJSONArray(resp.Content)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
			log.Warn().Err(err).Msg("could not parse suggestions from model response")
			suggestions = []ConnectionSuggestion{}
		}
	}
	return suggestions, resp.Content, nil
}

// GenerateCode produces source code for a single component in the requested
// language ("python" when empty).
func (s *Service) GenerateCode(ctx context.Context, comp *blueprint.Component, language string) (string, error) {
	if language == "" {
		language = "python"
	}
	resp, err := s.client.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: generateCodePrompt(comp, language)}},
		MaxTokens: 2048,
	})
	if err != nil {
		return "", fmt.Errorf("code generation failed: %w", err)
	}
	return resp.Content, nil
}

// GenerateDraft implements codemap.DraftGenerator: it asks the model for a
// component/connection graph in JSON and parses the first object found. Any
// failure is returned so the caller can fall back to template generation.
func (s *Service) GenerateDraft(ctx context.Context, prompt string, base *blueprint.Blueprint) (*codemap.Draft, error) {
	resp, err := s.client.Complete(ctx, &llm.Request{
		System:      draftSystemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: draftPrompt(prompt, base)}},
		MaxTokens:   2048,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("draft completion failed: %w", err)
	}

	raw := extractJSONObject(resp.Content)
	if raw == "" {
		return nil, fmt.Errorf("model response contains no JSON object")
	}

	var draft codemap.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("could not parse draft: %w", err)
	}
	if len(draft.Components) == 0 {
		return nil, fmt.Errorf("draft contains no components")
	}
	return &draft, nil
}

// extractJSONArray returns the widest [...] span in s, or ""
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// extractJSONObject returns the widest {...} span in s, or ""
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
