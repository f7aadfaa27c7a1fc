package services

import (
	"context"
	"strings"
	"time"

	"ragchat-backend/internal/llm"
	"ragchat-backend/internal/memory"
	"ragchat-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	systemPrompt = "You are a helpful AI assistant with access to conversation history."

	// persistGrace bounds the assistant-message write after generation has
	// already completed, so a client disconnect racing the final flush does
	// not lose the turn.
	persistGrace = 10 * time.Second
)

// TurnInput carries one validated-at-the-boundary chat turn request.
// ConversationID is already resolved: the handler synthesizes a fresh id
// when the client omitted one.
type TurnInput struct {
	Message        string
	Provider       string
	ConversationID string
}

// TurnService orchestrates one chat turn: retrieve context, assemble the
// prompt, stream the provider's response, and persist both turn messages.
type TurnService struct {
	store      memory.Store
	providers  *llm.Registry
	retrievalK int
}

// NewTurnService creates a new TurnService.
func NewTurnService(store memory.Store, providers *llm.Registry, retrievalK int) *TurnService {
	return &TurnService{
		store:      store,
		providers:  providers,
		retrievalK: retrievalK,
	}
}

// RunTurn produces the turn's event stream. The channel yields zero or more
// thinking/token events and is closed after exactly one terminal done or
// error event. Faults never escape: every failure path converges to an
// error event. Cancelling ctx stops the turn; events already sent stand.
// The caller must drain the channel until it closes, even after
// cancellation, so the terminal frame is always deliverable.
func (s *TurnService) RunTurn(ctx context.Context, in TurnInput) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent, 8)
	go func() {
		defer close(events)
		s.runTurn(ctx, in, events)
	}()
	return events
}

func (s *TurnService) runTurn(ctx context.Context, in TurnInput, events chan<- models.StreamEvent) {
	logger := log.With().
		Str("conversation_id", in.ConversationID).
		Str("provider", in.Provider).
		Logger()

	// Input validation happens before any side effect.
	if strings.TrimSpace(in.Message) == "" {
		events <- models.ErrorEvent("message must not be empty")
		return
	}

	provider, err := s.providers.Get(in.Provider)
	if err != nil {
		events <- models.ErrorEvent(err.Error())
		return
	}

	if !send(ctx, events, models.ThinkingEvent("Analyzing your question...")) {
		events <- models.ErrorEvent("turn cancelled: " + ctx.Err().Error())
		return
	}

	// Retrieval is best-effort: an unreachable store degrades to an
	// empty-context turn instead of aborting.
	var contextDocs []string
	docs, err := s.store.Query(ctx, in.Message, in.ConversationID, s.retrievalK)
	if err != nil {
		logger.Warn().Err(err).Msg("Context retrieval failed, continuing without context")
	} else {
		for _, doc := range docs {
			contextDocs = append(contextDocs, doc.Content)
		}
	}

	prompt := llm.Prompt{
		System:      systemPrompt,
		Context:     contextDocs,
		UserMessage: in.Message,
	}

	// The user message is persisted before generation begins, and stays
	// persisted even when generation fails: a failed answer must not erase
	// the recorded question.
	err = s.store.Add(ctx, memory.Document{
		ID:             uuid.New(),
		Content:        in.Message,
		Role:           "user",
		ConversationID: in.ConversationID,
		Timestamp:      time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to persist user message")
		events <- models.ErrorEvent("failed to persist user message: " + err.Error())
		return
	}

	var answer strings.Builder
	for chunk := range provider.Generate(ctx, prompt) {
		if chunk.Err != nil {
			logger.Error().Err(chunk.Err).Msg("Provider stream failed")
			events <- models.ErrorEvent(chunk.Err.Error())
			return
		}
		answer.WriteString(chunk.Text)
		if !send(ctx, events, models.TokenEvent(chunk.Text)) {
			events <- models.ErrorEvent("turn cancelled: " + ctx.Err().Error())
			return
		}
	}
	if err := ctx.Err(); err != nil {
		// Turn deadline hit or client gone mid-stream; no assistant persist.
		// The terminal frame still goes out for a client that is just slow.
		events <- models.ErrorEvent("turn cancelled: " + err.Error())
		return
	}

	// Generation completed; the write proceeds on a detached context so a
	// disconnect at this point cannot lose the finished answer.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistGrace)
	defer cancel()
	err = s.store.Add(persistCtx, memory.Document{
		ID:             uuid.New(),
		Content:        answer.String(),
		Role:           "assistant",
		ConversationID: in.ConversationID,
		Timestamp:      time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to persist assistant message")
		events <- models.ErrorEvent("failed to persist assistant message: " + err.Error())
		return
	}

	events <- models.DoneEvent()
}

// send delivers a non-terminal event, giving up once the turn context is
// cancelled. Terminal frames are sent unconditionally instead: the caller
// of RunTurn drains the channel until close, so that send cannot stick.
func send(ctx context.Context, events chan<- models.StreamEvent, ev models.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
