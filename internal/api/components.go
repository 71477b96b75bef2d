package api

import (
	"net/http"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
	"github.com/blueprinthq/blueprintd/internal/component"
)

// CreateComponentRequest is the request body for creating a component
type CreateComponentRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name,omitempty"`
}

// ValidateComponentRequest wraps a component for validation
type ValidateComponentRequest struct {
	Component *blueprint.Component `json:"component"`
}

// ComponentStatsRequest carries the component set to summarize
type ComponentStatsRequest struct {
	Components []blueprint.Component `json:"components"`
}

// ValidateConnectionRequest carries a candidate connection and its context
type ValidateConnectionRequest struct {
	Components []blueprint.Component `json:"components"`
	Connection *blueprint.Connection `json:"connection"`
}

// ExportSVGRequest is the request body for exporting rendered markup
type ExportSVGRequest struct {
	SVG      string `json:"svg"`
	Filename string `json:"filename,omitempty"`
}

func (s *Server) createComponent(w http.ResponseWriter, r *http.Request) {
	req := CreateComponentRequest{Type: blueprint.TypeFunction}
	if !decodeBody(w, r, &req) {
		return
	}

	comp, err := component.Create(req.Type, req.X, req.Y, req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"component": comp,
	})
}

func (s *Server) validateComponent(w http.ResponseWriter, r *http.Request) {
	var req ValidateComponentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Component == nil {
		respondError(w, http.StatusBadRequest, "no component data provided")
		return
	}
	respondJSON(w, http.StatusOK, component.ValidateComponent(req.Component))
}

func (s *Server) componentStats(w http.ResponseWriter, r *http.Request) {
	var req ComponentStatsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Components == nil {
		respondError(w, http.StatusBadRequest, "no components data provided")
		return
	}
	respondJSON(w, http.StatusOK, component.ComputeStats(req.Components))
}

func (s *Server) validateConnection(w http.ResponseWriter, r *http.Request) {
	var req ValidateConnectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Connection == nil || req.Components == nil {
		respondError(w, http.StatusBadRequest, "missing connection or components data")
		return
	}
	respondJSON(w, http.StatusOK, component.ValidateConnection(req.Components, *req.Connection))
}

func (s *Server) exportSVG(w http.ResponseWriter, r *http.Request) {
	var req ExportSVGRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SVG == "" {
		respondError(w, http.StatusBadRequest, "no SVG data provided")
		return
	}

	info, err := s.store.ExportSVG(req.SVG, req.Filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"filename": info.Filename,
		"filepath": info.Path,
	})
}
