package engine

import (
	"fmt"
	"strings"
)

// Backend names accepted by Detect.
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// DetectConfig holds parameters for backend selection.
type DetectConfig struct {
	Backend       string
	BaseURL       string
	APIKey        string
	OllamaBaseURL string
}

// Detect builds the configured backend wrapped in a circuit breaker.
func Detect(cfg DetectConfig) (*Breaker, error) {
	var e Engine
	switch strings.ToLower(cfg.Backend) {
	case "", BackendOpenAI:
		e = NewOpenAIEngine(cfg.APIKey, cfg.BaseURL)
	case BackendOllama:
		e = NewOllamaEngine(cfg.OllamaBaseURL)
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
	return NewBreaker(e, DefaultBreakerConfig()), nil
}
