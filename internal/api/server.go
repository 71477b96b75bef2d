// Package api exposes the blueprint service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/blueprinthq/blueprintd/internal/assistant"
	"github.com/blueprinthq/blueprintd/internal/blueprint"
	"github.com/blueprinthq/blueprintd/internal/codemap"
	"github.com/blueprinthq/blueprintd/internal/config"
	"github.com/blueprinthq/blueprintd/internal/relay"
	"github.com/blueprinthq/blueprintd/internal/store"
)

// Mapper is the slice of the codebase mapper the API uses
type Mapper interface {
	MapCodebase(ctx context.Context, subpath string, requestMaxFiles int) (*codemap.Result, error)
	MapFile(ctx context.Context, subpath string) (*codemap.Result, error)
	GenerateFromPrompt(ctx context.Context, prompt string, base *blueprint.Blueprint) (*codemap.Result, error)
}

// BlueprintStore is the slice of the file store the API uses
type BlueprintStore interface {
	Save(bp *blueprint.Blueprint, filename string) (*store.SavedInfo, error)
	Load(filename string) (*blueprint.Blueprint, error)
	List() ([]store.ListEntry, error)
	Delete(filename string) error
	ExportSVG(content, filename string) (*store.SavedInfo, error)
}

// Assistant is the slice of the completion assistant the API uses.
// A nil Assistant disables the /api/ai endpoints.
type Assistant interface {
	Chat(ctx context.Context, message string, bp *blueprint.Blueprint) (string, error)
	AnalyzeDiagram(ctx context.Context, bp *blueprint.Blueprint) (string, error)
	SuggestConnections(ctx context.Context, bp *blueprint.Blueprint) ([]assistant.ConnectionSuggestion, string, error)
	GenerateCode(ctx context.Context, comp *blueprint.Component, language string) (string, error)
}

// Server represents the API server
type Server struct {
	cfg       *config.Config
	router    *chi.Mux
	mapper    Mapper
	store     BlueprintStore
	assistant Assistant
	hub       *relay.Hub
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, mapper Mapper, bpStore BlueprintStore, asst Assistant, hub *relay.Hub) *Server {
	s := &Server{
		cfg:       cfg,
		router:    chi.NewRouter(),
		mapper:    mapper,
		store:     bpStore,
		assistant: asst,
		hub:       hub,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthCheck)

		r.Route("/blueprints", func(r chi.Router) {
			r.Get("/", s.listBlueprints)
			r.Post("/", s.saveBlueprint)
			r.Post("/generate", s.generateBlueprint)
			r.Get("/{filename}", s.loadBlueprint)
			r.Delete("/{filename}", s.deleteBlueprint)
		})

		r.Route("/code", func(r chi.Router) {
			r.Post("/map", s.mapCodebase)
			r.Post("/map-file", s.mapFile)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/chat", s.aiChat)
			r.Post("/analyze", s.aiAnalyze)
			r.Post("/suggest-connections", s.aiSuggestConnections)
			r.Post("/generate-code", s.aiGenerateCode)
		})

		r.Route("/components", func(r chi.Router) {
			r.Post("/create", s.createComponent)
			r.Post("/validate", s.validateComponent)
			r.Post("/stats", s.componentStats)
		})
		r.Post("/connections/validate", s.validateConnection)

		r.Post("/export/svg", s.exportSVG)
	})

	if s.hub != nil {
		s.router.Get("/ws", relay.ServeWS(s.hub))
	}
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0",
		"services": map[string]bool{
			"ai":           s.assistant != nil,
			"file_storage": true,
		},
	})
}
