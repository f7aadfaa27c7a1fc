package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const ProviderGemini = "gemini"

// GeminiProvider streams generations from the Gemini API. Same capability as
// the OpenAI variant behind a different request/response envelope; both
// normalize to plain text chunks.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates the Gemini variant using an API-key backend.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

func (p *GeminiProvider) Generate(ctx context.Context, prompt Prompt) <-chan Chunk {
	out := make(chan Chunk, 10)

	go func() {
		defer close(out)

		temp := float32(0.7)
		cfg := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.SystemText(), genai.RoleUser),
			Temperature:       &temp,
		}
		contents := []*genai.Content{
			genai.NewContentFromText(prompt.UserMessage, genai.RoleUser),
		}

		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, cfg) {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				emit(ctx, out, Chunk{Err: fmt.Errorf("gemini stream: %w", err)})
				return
			}
			if text := resp.Text(); text != "" {
				if !emit(ctx, out, Chunk{Text: text}) {
					return
				}
			}
		}
	}()

	return out
}
