package engine

import (
	"context"

	"github.com/kalambet/frank/internal/ollama"
)

// OllamaEngine adapts ollama.Client to Engine and ModelManager.
type OllamaEngine struct {
	client *ollama.Client
}

// NewOllamaEngine creates an OllamaEngine for the server at baseURL.
func NewOllamaEngine(baseURL string) *OllamaEngine {
	return &OllamaEngine{client: ollama.New(baseURL)}
}

func (e *OllamaEngine) Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error) {
	msgs := make([]ollama.Message, len(messages))
	for i, m := range messages {
		msgs[i] = ollama.Message{Role: m.Role, Content: m.Content}
	}
	o := &ollama.Options{Temperature: opts.Temperature, NumPredict: opts.MaxTokens}
	return e.client.Chat(ctx, model, msgs, o, toOllamaSchema(opts.Schema))
}

func toOllamaSchema(s *Schema) *ollama.Schema {
	if s == nil {
		return nil
	}
	out := &ollama.Schema{
		Type:     s.Type,
		Items:    toOllamaProperty(s.Items),
		Required: s.Required,
	}
	if s.Properties != nil {
		out.Properties = make(map[string]ollama.SchemaProperty, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = *toOllamaProperty(&v)
		}
	}
	return out
}

func toOllamaProperty(p *SchemaProperty) *ollama.SchemaProperty {
	if p == nil {
		return nil
	}
	return &ollama.SchemaProperty{
		Type:        p.Type,
		Description: p.Description,
		Items:       toOllamaProperty(p.Items),
	}
}

func (e *OllamaEngine) IsRunning(ctx context.Context) bool {
	return e.client.IsRunning(ctx)
}

func (e *OllamaEngine) HasModel(ctx context.Context, name string) bool {
	return e.client.HasModel(ctx, name)
}

func (e *OllamaEngine) PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error {
	var cb func(ollama.PullProgress)
	if onProgress != nil {
		cb = func(p ollama.PullProgress) {
			onProgress(PullProgress{Status: p.Status, Total: p.Total, Completed: p.Completed})
		}
	}
	return e.client.PullModel(ctx, name, cb)
}
