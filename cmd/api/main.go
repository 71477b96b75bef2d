package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/blueprinthq/blueprintd/internal/api"
	"github.com/blueprinthq/blueprintd/internal/assistant"
	"github.com/blueprinthq/blueprintd/internal/codemap"
	"github.com/blueprinthq/blueprintd/internal/config"
	"github.com/blueprinthq/blueprintd/internal/llm"
	"github.com/blueprinthq/blueprintd/internal/relay"
	"github.com/blueprinthq/blueprintd/internal/store"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Completion providers are optional; without them the AI endpoints are
	// disabled and prompt generation uses the template library.
	var apiAssistant api.Assistant
	var drafts codemap.DraftGenerator
	if router, err := llm.NewRouter(cfg); err != nil {
		log.Warn().Err(err).Msg("running without completion providers")
	} else {
		svc := assistant.New(router)
		apiAssistant = svc
		drafts = svc
	}

	mapper, err := codemap.New(cfg.CodebaseRoot, cfg.CodemapMaxFiles, cfg.CodemapExcludeDirs, drafts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create codebase mapper")
	}

	fileStore, err := store.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create blueprint store")
	}

	hub := relay.NewHub()
	if cfg.NATSURL != "" {
		bridge, err := relay.NewNATSBridge(cfg.NATSURL, hub)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect relay bridge")
		}
		defer bridge.Close()
		hub.AttachBridge(bridge)
	}

	srv := api.NewServer(cfg, mapper, fileStore, apiAssistant, hub)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not gracefully shutdown the server")
		}
		close(done)
	}()

	log.Info().Int("port", cfg.Port).Str("root", cfg.CodebaseRoot).Msg("starting API server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("could not listen on port")
	}

	<-done
	log.Info().Msg("server stopped")
}
