package weaviate

import (
	"context"
	"encoding/json"
	"fmt"

	"ragchat-backend/internal/memory"

	"github.com/google/uuid"
	wv "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// className is the Weaviate class holding conversation messages. The class
// is created by Weaviate's auto-schema on the first write.
const className = "ChatMessage"

// lookupLimit caps a full-conversation listing.
const lookupLimit = 200

// Store implements memory.Store on top of a Weaviate instance.
type Store struct {
	client *wv.Client
}

// NewStore creates a Weaviate-backed memory store.
func NewStore(client *wv.Client) *Store {
	return &Store{client: client}
}

// storedMessage mirrors the ChatMessage class properties for typed GraphQL parsing.
type storedMessage struct {
	Content        string `json:"content"`
	Role           string `json:"role"`
	ConversationID string `json:"conversation_id"`
	Timestamp      int64  `json:"timestamp"`
	Additional     struct {
		ID string `json:"id"`
	} `json:"_additional"`
}

// graphQLMessages is the typed shape of a Get query response.
type graphQLMessages struct {
	Get struct {
		ChatMessage []storedMessage `json:"ChatMessage"`
	} `json:"Get"`
}

func (s *Store) Add(ctx context.Context, doc memory.Document) error {
	_, err := s.client.Data().Creator().
		WithClassName(className).
		WithID(doc.ID.String()).
		WithProperties(map[string]interface{}{
			"content":         doc.Content,
			"role":            doc.Role,
			"conversation_id": doc.ConversationID,
			"timestamp":       doc.Timestamp,
		}).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate add: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, text, conversationID string, limit int) ([]memory.Document, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{text})

	result, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearText(nearText).
		WithWhere(conversationFilter(conversationID)).
		WithLimit(limit).
		WithFields(messageFields()...).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate query: %s", result.Errors[0].Message)
	}

	return parseMessages(result.Data)
}

func (s *Store) ListByConversation(ctx context.Context, conversationID string) ([]memory.Document, error) {
	sortBy := graphql.Sort{
		Path:  []string{"timestamp"},
		Order: graphql.Asc,
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithWhere(conversationFilter(conversationID)).
		WithSort(sortBy).
		WithLimit(lookupLimit).
		WithFields(messageFields()...).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate lookup: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate lookup: %s", result.Errors[0].Message)
	}

	return parseMessages(result.Data)
}

func conversationFilter(conversationID string) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{"conversation_id"}).
		WithOperator(filters.Equal).
		WithValueString(conversationID)
}

func messageFields() []graphql.Field {
	return []graphql.Field{
		{Name: "content"},
		{Name: "role"},
		{Name: "conversation_id"},
		{Name: "timestamp"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}},
	}
}

// parseMessages converts the raw GraphQL payload into documents.
// Marshal-then-unmarshal through the typed struct keeps the parsing honest
// without hand-walking nested maps.
func parseMessages(data interface{}) ([]memory.Document, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal weaviate response: %w", err)
	}

	var typed graphQLMessages
	if err := json.Unmarshal(jsonBytes, &typed); err != nil {
		return nil, fmt.Errorf("unmarshal weaviate response: %w", err)
	}

	docs := make([]memory.Document, 0, len(typed.Get.ChatMessage))
	for _, msg := range typed.Get.ChatMessage {
		id, _ := uuid.Parse(msg.Additional.ID)
		docs = append(docs, memory.Document{
			ID:             id,
			Content:        msg.Content,
			Role:           msg.Role,
			ConversationID: msg.ConversationID,
			Timestamp:      msg.Timestamp,
		})
	}
	return docs, nil
}
