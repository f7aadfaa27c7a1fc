package models

// ChatMessage represents a single message in a conversation.
// Messages are immutable once written to the memory store; a conversation is
// the set of all messages sharing a conversation_id.
type ChatMessage struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The text content of the message
}
