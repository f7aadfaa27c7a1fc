package llm

import (
	"context"
	"strings"
)

// Prompt is the fully assembled input for one generation: a system
// instruction, retrieved context documents in rank order, and the new user
// message. Truncation beyond provider-imposed limits is not applied here.
type Prompt struct {
	System      string
	Context     []string
	UserMessage string
}

// SystemText folds the retrieved context into the system instruction, the
// same way for every provider so the pipeline stays provider-agnostic.
func (p Prompt) SystemText() string {
	if len(p.Context) == 0 {
		return p.System
	}
	return p.System + "\n\nRelevant context from previous conversation:\n" + strings.Join(p.Context, "\n")
}

// Chunk is one unit of a provider's fragment stream. A non-nil Err is
// terminal: no further chunks follow it. Fragments already delivered are
// never retracted.
type Chunk struct {
	Text string
	Err  error
}

// Provider is the capability shared by all generation backends: produce a
// finite, non-restartable sequence of text fragments for a prompt. The
// returned channel is closed by the provider when the stream ends, either
// normally or after a terminal error chunk. Cancelling ctx stops the stream.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) <-chan Chunk
}
