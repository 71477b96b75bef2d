package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

// SaveBlueprintRequest is the request body for saving a blueprint
type SaveBlueprintRequest struct {
	Filename  string               `json:"filename"`
	Blueprint *blueprint.Blueprint `json:"blueprint"`
}

// GenerateBlueprintRequest is the request body for prompt generation
type GenerateBlueprintRequest struct {
	Prompt    string               `json:"prompt"`
	Blueprint *blueprint.Blueprint `json:"blueprint,omitempty"`
}

func (s *Server) listBlueprints(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"blueprints": entries,
	})
}

func (s *Server) saveBlueprint(w http.ResponseWriter, r *http.Request) {
	var req SaveBlueprintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Blueprint == nil {
		respondError(w, http.StatusBadRequest, "no blueprint data provided")
		return
	}

	info, err := s.store.Save(req.Blueprint, req.Filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"filename": info.Filename,
		"filepath": info.Path,
		"size":     info.Size,
	})
}

func (s *Server) loadBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, err := s.store.Load(chi.URLParam(r, "filename"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"data":     bp,
		"filename": chi.URLParam(r, "filename"),
	})
}

func (s *Server) deleteBlueprint(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := s.store.Delete(filename); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"filename": filename,
	})
}

func (s *Server) generateBlueprint(w http.ResponseWriter, r *http.Request) {
	var req GenerateBlueprintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result, err := s.mapper.GenerateFromPrompt(r.Context(), req.Prompt, req.Blueprint)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"blueprint": result.Blueprint,
		"stats":     result.Stats,
	})
}
