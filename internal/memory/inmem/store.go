package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ragchat-backend/internal/memory"
)

// Store is an in-memory memory.Store used by tests and key-less dev runs.
// Ranking is a naive term-overlap score, enough to preserve the contract
// that results are conversation-scoped and similarity-ordered.
type Store struct {
	mu   sync.Mutex
	docs []memory.Document
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Add(_ context.Context, doc memory.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return nil
}

func (s *Store) Query(_ context.Context, text, conversationID string, limit int) ([]memory.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		doc   memory.Document
		score int
		pos   int
	}

	queryTerms := terms(text)
	var candidates []scored
	for i, doc := range s.docs {
		if doc.ConversationID != conversationID {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: overlap(queryTerms, terms(doc.Content)), pos: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		// Ties broken by recency.
		return candidates[i].pos > candidates[j].pos
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]memory.Document, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, c.doc)
	}
	return results, nil
}

func (s *Store) ListByConversation(_ context.Context, conversationID string) ([]memory.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []memory.Document
	for _, doc := range s.docs {
		if doc.ConversationID == conversationID {
			results = append(results, doc)
		}
	}
	return results, nil
}

func terms(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,!?;:")] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
