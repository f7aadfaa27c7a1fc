package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const ProviderOpenAI = "openai"

// OpenAIProvider streams chat completions from the OpenAI API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates the OpenAI variant. The API key is fixed at
// construction; it is never re-read from the environment.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

// Generate streams completion fragments for the prompt. Upstream errors
// (auth, quota, network, malformed stream) surface as one terminal error
// chunk after any fragments already delivered.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt Prompt) <-chan Chunk {
	out := make(chan Chunk, 10)

	go func() {
		defer close(out)

		params := openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(prompt.SystemText()),
				openai.UserMessage(prompt.UserMessage),
			}),
			Model:       openai.F(p.model),
			N:           openai.Int(1),
			Temperature: openai.Float(0.7),
		}

		strm := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer strm.Close()

		if err := strm.Err(); err != nil {
			emit(ctx, out, Chunk{Err: fmt.Errorf("openai stream: %w", err)})
			return
		}

		for strm.Next() {
			if ctx.Err() != nil {
				return
			}
			chunk := strm.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if !emit(ctx, out, Chunk{Text: delta}) {
					return
				}
			}
		}

		if err := strm.Err(); err != nil {
			emit(ctx, out, Chunk{Err: fmt.Errorf("openai stream: %w", err)})
		}
	}()

	return out
}

// emit sends a chunk unless the context is already cancelled. Returns false
// when the send was abandoned.
func emit(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
