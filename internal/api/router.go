package api

import (
	"net/http"

	"ragchat-backend/internal/config"
	"ragchat-backend/internal/handlers"
	"ragchat-backend/internal/models"
	"ragchat-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// RouterDependencies holds all the dependencies required by the router setup.
type RouterDependencies struct {
	ChatHandler *handlers.ChatHandlers
	Config      *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	// No blanket timeout middleware: the chat stream outlives any sane
	// request timeout and carries its own per-turn deadline instead.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Conversation-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Service Banner & Liveness Probe ---
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "RAG Chat Backend"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy"})
	})

	// --- Chat Routes ---
	if deps.ChatHandler != nil {
		r.Route("/v1", func(r chi.Router) {
			r.Post("/chat", deps.ChatHandler.HandleChat)
			r.Get("/conversations/{conversationID}", deps.ChatHandler.HandleGetConversation)
		})
	} else {
		log.Warn().Msg("ChatHandler dependency is nil, skipping /v1 chat routes")
	}

	return r
}
