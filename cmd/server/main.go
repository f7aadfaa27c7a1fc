package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ragchat-backend/internal/api"
	"ragchat-backend/internal/config"
	"ragchat-backend/internal/handlers"
	"ragchat-backend/internal/llm"
	"ragchat-backend/internal/memory"
	"ragchat-backend/internal/memory/inmem"
	weaviatestore "ragchat-backend/internal/memory/weaviate"
	"ragchat-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	wv "github.com/weaviate/weaviate-go-client/v5/weaviate"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	log.Info().Msg("Starting RAG Chat Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Initialize Vector Memory Store
	store, err := newMemoryStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize memory store")
	}

	// 3. Initialize Provider Registry
	// Credentials are read once here and fixed at construction; a provider
	// without a key is not registered, so selecting it fails validation.
	registry := llm.NewRegistry()
	if cfg.OpenAIAPIKey != "" {
		registry.Register(llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Gemini provider")
		}
		registry.Register(gemini)
	}

	// 4. Initialize Services and Handlers
	turnService := services.NewTurnService(store, registry, cfg.RetrievalK)
	chatHandler := handlers.NewChatHandlers(turnService, store, cfg.TurnTimeout)

	// 5. Setup Router
	router := api.NewRouter(api.RouterDependencies{
		ChatHandler: chatHandler,
		Config:      cfg,
	})

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// WriteTimeout stays unset: the chat stream is long-lived and is
		// bounded by the per-turn deadline instead.
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.HTTPPort).Msg("Server failed")
		}
	}()

	<-stopChan
	log.Info().Msg("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server graceful shutdown failed")
	}

	log.Info().Msg("Server shutdown complete.")
}

// newMemoryStore builds the configured memory.Store backend.
func newMemoryStore(cfg *config.Config) (memory.Store, error) {
	switch cfg.MemoryBackend {
	case "inmem":
		log.Warn().Msg("Using in-memory store; conversation history will not survive restarts")
		return inmem.NewStore(), nil
	default:
		client, err := wv.NewClient(wv.Config{
			Host:   cfg.WeaviateHost,
			Scheme: cfg.WeaviateScheme,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.WeaviateHost).Msg("Weaviate store initialized")
		return weaviatestore.NewStore(client), nil
	}
}
