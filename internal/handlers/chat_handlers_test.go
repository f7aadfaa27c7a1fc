package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ragchat-backend/internal/api"
	"ragchat-backend/internal/config"
	"ragchat-backend/internal/handlers"
	"ragchat-backend/internal/llm"
	"ragchat-backend/internal/memory/inmem"
	"ragchat-backend/internal/models"
	"ragchat-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	chunks []llm.Chunk
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(_ context.Context, _ llm.Prompt) <-chan llm.Chunk {
	out := make(chan llm.Chunk, len(p.chunks))
	go func() {
		defer close(out)
		for _, c := range p.chunks {
			out <- c
		}
	}()
	return out
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	registry := llm.NewRegistry()
	registry.Register(&stubProvider{name: "openai", chunks: []llm.Chunk{{Text: "Hel"}, {Text: "lo"}}})

	store := inmem.NewStore()
	turnService := services.NewTurnService(store, registry, 3)
	chatHandler := handlers.NewChatHandlers(turnService, store, 30*time.Second)

	return api.NewRouter(api.RouterDependencies{
		ChatHandler: chatHandler,
		Config:      &config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}},
	})
}

func postChat(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func parseFrames(t *testing.T, body *bytes.Buffer) []models.StreamEvent {
	t.Helper()
	var frames []models.StreamEvent
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev models.StreamEvent
		require.NoError(t, json.Unmarshal(line, &ev), "each frame must be one JSON object: %s", line)
		frames = append(frames, ev)
	}
	return frames
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
}

func TestChatStreamSuccess(t *testing.T) {
	srv := newTestServer(t)

	w := postChat(t, srv, `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	convID := w.Header().Get("X-Conversation-Id")
	require.NotEmpty(t, convID, "a synthesized conversation id must be returned")

	frames := parseFrames(t, w.Body)
	require.NotEmpty(t, frames)
	assert.Equal(t, models.EventThinking, frames[0].Type)
	assert.Equal(t, models.EventDone, frames[len(frames)-1].Type)

	var answer string
	for _, f := range frames {
		if f.Type == models.EventToken {
			answer += f.Content
		}
	}
	assert.Equal(t, "Hello", answer)

	// The persisted turn is visible through the lookup endpoint.
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+convID, nil)
	lookup := httptest.NewRecorder()
	srv.ServeHTTP(lookup, req)
	require.Equal(t, http.StatusOK, lookup.Code)

	var conv models.ConversationResponse
	require.NoError(t, json.Unmarshal(lookup.Body.Bytes(), &conv))
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.ChatMessage{Role: "user", Content: "Hello"}, conv.Messages[0])
	assert.Equal(t, models.ChatMessage{Role: "assistant", Content: answer}, conv.Messages[1])
}

func TestChatFreshConversationIDsDiffer(t *testing.T) {
	srv := newTestServer(t)

	first := postChat(t, srv, `{"message":"Hello"}`)
	second := postChat(t, srv, `{"message":"Hello"}`)

	a := first.Header().Get("X-Conversation-Id")
	b := second.Header().Get("X-Conversation-Id")
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}

func TestChatReusedConversationIDAccumulates(t *testing.T) {
	srv := newTestServer(t)

	first := postChat(t, srv, `{"message":"Hello"}`)
	convID := first.Header().Get("X-Conversation-Id")
	require.NotEmpty(t, convID)

	w := postChat(t, srv, `{"message":"Hello again","conversation_id":"`+convID+`"}`)
	assert.Equal(t, convID, w.Header().Get("X-Conversation-Id"))

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+convID, nil)
	lookup := httptest.NewRecorder()
	srv.ServeHTTP(lookup, req)

	var conv models.ConversationResponse
	require.NoError(t, json.Unmarshal(lookup.Body.Bytes(), &conv))
	assert.Len(t, conv.Messages, 4, "both turns belong to the same conversation")
}

func TestChatEmptyMessage(t *testing.T) {
	srv := newTestServer(t)

	w := postChat(t, srv, `{"message":""}`)
	require.Equal(t, http.StatusOK, w.Code, "faults are delivered in-band once the stream is committed")

	frames := parseFrames(t, w.Body)
	require.Len(t, frames, 1)
	assert.Equal(t, models.EventError, frames[0].Type)

	convID := w.Header().Get("X-Conversation-Id")
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+convID, nil)
	lookup := httptest.NewRecorder()
	srv.ServeHTTP(lookup, req)

	var conv models.ConversationResponse
	require.NoError(t, json.Unmarshal(lookup.Body.Bytes(), &conv))
	assert.Empty(t, conv.Messages, "a rejected turn writes nothing")
}

func TestChatUnknownProvider(t *testing.T) {
	srv := newTestServer(t)

	w := postChat(t, srv, `{"message":"Hello","provider":"mistral"}`)

	frames := parseFrames(t, w.Body)
	require.Len(t, frames, 1)
	assert.Equal(t, models.EventError, frames[0].Type)
	assert.Contains(t, frames[0].Content, "mistral")
}

func TestChatInvalidBody(t *testing.T) {
	srv := newTestServer(t)

	w := postChat(t, srv, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationLookupUnknownIDIsEmpty(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/no-such-conversation", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var conv models.ConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Equal(t, "no-such-conversation", conv.ConversationID)
	assert.Empty(t, conv.Messages)
}
