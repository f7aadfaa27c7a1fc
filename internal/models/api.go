package models

// --- Request Structs ---

// ChatRequest defines the expected body for the streaming chat endpoint.
// Provider defaults to "openai" when omitted. A missing ConversationID means
// "start a new conversation"; the handler synthesizes a fresh id and returns
// it in the X-Conversation-Id response header.
type ChatRequest struct {
	Message        string `json:"message"`
	Provider       string `json:"provider,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// --- Response Structs ---

// ConversationResponse defines the body returned by the conversation lookup
// endpoint. Messages are in the store's native (insertion) order.
type ConversationResponse struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []ChatMessage `json:"messages"`
}

// HealthResponse defines the health check body.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
