package engine

import (
	"context"
	"time"

	"github.com/kalambet/frank/internal/openai"
)

// OpenAIEngine adapts an OpenAI-compatible API to Engine. Structured output
// schemas are not sent; callers parse the text themselves.
type OpenAIEngine struct {
	client *openai.Client
}

// NewOpenAIEngine creates an OpenAIEngine for baseURL authenticated by apiKey.
func NewOpenAIEngine(apiKey, baseURL string) *OpenAIEngine {
	return &OpenAIEngine{client: openai.NewClient(apiKey, baseURL)}
}

func (e *OpenAIEngine) Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error) {
	msgs := make([]openai.Message, len(messages))
	for i, m := range messages {
		msgs[i] = openai.Message{Role: m.Role, Content: m.Content}
	}
	return e.client.Complete(ctx, openai.ChatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
}

// IsRunning reports whether a key is configured and the models endpoint answers.
func (e *OpenAIEngine) IsRunning(ctx context.Context) bool {
	if !e.client.HasKey() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := e.client.ListModels(ctx)
	return err == nil
}
