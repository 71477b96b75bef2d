package api

import (
	"net/http"
)

// MapCodebaseRequest is the request body for scanning a directory
type MapCodebaseRequest struct {
	Path     string `json:"path"`
	MaxFiles int    `json:"max_files,omitempty"`
}

// MapFileRequest is the request body for mapping a single file
type MapFileRequest struct {
	Path string `json:"path"`
}

func (s *Server) mapCodebase(w http.ResponseWriter, r *http.Request) {
	req := MapCodebaseRequest{Path: "."}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		req.Path = "."
	}

	result, err := s.mapper.MapCodebase(r.Context(), req.Path, req.MaxFiles)
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

func (s *Server) mapFile(w http.ResponseWriter, r *http.Request) {
	var req MapFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "no file path provided")
		return
	}

	result, err := s.mapper.MapFile(r.Context(), req.Path)
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
