package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ragchat-backend/internal/memory"
	"ragchat-backend/internal/models"
	"ragchat-backend/internal/services"
	"ragchat-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChatHandlers handles HTTP requests related to chat turns and conversation lookup.
type ChatHandlers struct {
	turnService *services.TurnService
	store       memory.Store
	turnTimeout time.Duration
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(turnService *services.TurnService, store memory.Store, turnTimeout time.Duration) *ChatHandlers {
	return &ChatHandlers{
		turnService: turnService,
		store:       store,
		turnTimeout: turnTimeout,
	}
}

// HandleChat runs one chat turn and streams the resulting events as
// newline-delimited JSON frames, one frame per event, flushed as produced.
// Once streaming has begun every fault is delivered in-band as an error
// frame, never as a transport-level failure.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	provider := req.Provider
	if provider == "" {
		provider = "openai"
	}

	// A missing conversation id means "start a new conversation". The id is
	// synthesized here at the boundary and echoed in a header before the
	// body starts streaming, since the frame alphabet carries no id.
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.turnTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Conversation-Id", conversationID)
	w.WriteHeader(http.StatusOK)

	events := h.turnService.RunTurn(ctx, services.TurnInput{
		Message:        req.Message,
		Provider:       provider,
		ConversationID: conversationID,
	})

	// The event channel must be drained until the pipeline closes it, even
	// once the client is gone, so the pipeline's terminal frame never sticks.
	enc := json.NewEncoder(w) // Encode appends the frame-delimiting newline.
	clientGone := false
	for ev := range events {
		if clientGone {
			continue
		}
		if err := enc.Encode(ev); err != nil {
			// Client went away; the cancelled request context stops the
			// pipeline, this loop just discards its remaining events.
			log.Debug().Err(err).Str("conversation_id", conversationID).Msg("Client disconnected mid-stream")
			clientGone = true
			continue
		}
		flusher.Flush()
	}
}

// HandleGetConversation returns the ordered message history for a conversation.
func (h *ChatHandlers) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Conversation ID is required")
		return
	}

	docs, err := h.store.ListByConversation(r.Context(), conversationID)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("Conversation lookup failed")
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load conversation: "+err.Error())
		return
	}

	messages := make([]models.ChatMessage, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, models.ChatMessage{
			Role:    doc.Role,
			Content: doc.Content,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, models.ConversationResponse{
		ConversationID: conversationID,
		Messages:       messages,
	})
}
