package api

import (
	"net/http"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

// ChatRequest is the request body for assistant chat
type ChatRequest struct {
	Message string               `json:"message"`
	Diagram *blueprint.Blueprint `json:"diagram,omitempty"`
}

// DiagramRequest carries a diagram for analysis or suggestions
type DiagramRequest struct {
	Diagram *blueprint.Blueprint `json:"diagram"`
}

// GenerateCodeRequest is the request body for component code generation
type GenerateCodeRequest struct {
	Component *blueprint.Component `json:"component"`
	Language  string               `json:"language,omitempty"`
}

// requireAssistant rejects AI requests when no provider is configured
func (s *Server) requireAssistant(w http.ResponseWriter) bool {
	if s.assistant == nil {
		respondError(w, http.StatusServiceUnavailable, "assistant not configured")
		return false
	}
	return true
}

func (s *Server) aiChat(w http.ResponseWriter, r *http.Request) {
	if !s.requireAssistant(w) {
		return
	}
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "no message provided")
		return
	}

	reply, err := s.assistant.Chat(r.Context(), req.Message, req.Diagram)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": reply,
	})
}

func (s *Server) aiAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.requireAssistant(w) {
		return
	}
	var req DiagramRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Diagram == nil {
		respondError(w, http.StatusBadRequest, "no diagram data provided")
		return
	}

	analysis, err := s.assistant.AnalyzeDiagram(r.Context(), req.Diagram)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": analysis,
	})
}

func (s *Server) aiSuggestConnections(w http.ResponseWriter, r *http.Request) {
	if !s.requireAssistant(w) {
		return
	}
	var req DiagramRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Diagram == nil {
		respondError(w, http.StatusBadRequest, "no diagram data provided")
		return
	}

	suggestions, raw, err := s.assistant.SuggestConnections(r.Context(), req.Diagram)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"suggestions":  suggestions,
		"raw_response": raw,
	})
}

func (s *Server) aiGenerateCode(w http.ResponseWriter, r *http.Request) {
	if !s.requireAssistant(w) {
		return
	}
	var req GenerateCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Component == nil {
		respondError(w, http.StatusBadRequest, "no component data provided")
		return
	}
	language := req.Language
	if language == "" {
		language = "python"
	}

	code, err := s.assistant.GenerateCode(r.Context(), req.Component, language)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"code":     code,
		"language": language,
	})
}
