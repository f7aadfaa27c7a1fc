package memory

import (
	"context"

	"github.com/google/uuid"
)

// Document is one stored conversation message with its retrieval metadata.
type Document struct {
	ID             uuid.UUID
	Content        string
	Role           string // "user" or "assistant"
	ConversationID string
	Timestamp      int64 // Unix milliseconds, orders the conversation lookup
}

// Store defines the interface for the vector memory store.
// This allows for mocking in tests and potential backend switching. The
// store is the system's only persistence surface; its own concurrency
// control is the only consistency guarantee offered across turns.
type Store interface {
	// Add persists one document. Documents are immutable once added.
	Add(ctx context.Context, doc Document) error

	// Query returns up to limit documents from the given conversation,
	// ranked by similarity to text. An empty result is valid (first turn).
	Query(ctx context.Context, text, conversationID string, limit int) ([]Document, error)

	// ListByConversation returns every document in the conversation in the
	// store's native order (by timestamp, oldest first).
	ListByConversation(ctx context.Context, conversationID string) ([]Document, error)
}
