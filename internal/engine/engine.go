package engine

import "context"

// Engine abstracts the text-generation backend. The matching components
// depend on this interface rather than a concrete client.
type Engine interface {
	// Chat sends messages to model and returns the raw assistant text.
	Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error)

	// IsRunning reports whether the backend is reachable and usable.
	IsRunning(ctx context.Context) bool
}

// ModelManager is implemented by backends that host models locally and can
// download missing ones.
type ModelManager interface {
	HasModel(ctx context.Context, name string) bool
	PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error
}
