package intent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/llmjson"
)

const (
	defaultTimeout = 10 * time.Second
	maxSuggestions = 5

	// FallbackIntent is the summary returned when the model cannot be used.
	FallbackIntent = "Looking for relevant experts"
)

// Chatter is the slice of engine.Engine the analyzer needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []engine.Message, opts engine.Options) (string, error)
}

// Analysis is the inferred need behind a search query.
type Analysis struct {
	Intent      string   `json:"intent"`
	Suggestions []string `json:"suggestions"`
	SearchTerms []string `json:"searchTerms"`
}

// Analyzer asks the model what a search query is looking for.
type Analyzer struct {
	client  Chatter
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer. A zero timeout uses the default.
func NewAnalyzer(client Chatter, model string, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Analyzer{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  slog.Default().With("component", "intent"),
	}
}

// Analyze returns the model's reading of query. Any failure (backend error,
// timeout, unusable response) yields Fallback(query); Analyze never fails.
func (a *Analyzer) Analyze(ctx context.Context, query string) Analysis {
	if strings.TrimSpace(query) == "" {
		return Fallback(query)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.client.Chat(ctx, a.model, BuildPrompt(query), engine.Options{
		Temperature: 0.3,
		MaxTokens:   500,
		Schema:      analysisSchema(),
	})
	if err != nil {
		a.logger.Warn("query analysis failed, using fallback", "error", err)
		return Fallback(query)
	}

	res := parseAnalysis(raw)
	if !res.OK() {
		a.logger.Warn("query analysis response unusable, using fallback", "error", res.Reason)
		a.logger.Debug("query analysis raw response", "response", raw)
		return Fallback(query)
	}
	return res.Value
}

// Fallback is the analysis used when the model is unavailable.
func Fallback(query string) Analysis {
	return Analysis{
		Intent:      FallbackIntent,
		Suggestions: []string{},
		SearchTerms: strings.Fields(query),
	}
}

func parseAnalysis(raw string) llmjson.Result[Analysis] {
	res := llmjson.DecodeObject[Analysis](raw)
	if !res.OK() {
		return res
	}
	a := res.Value
	a.Intent = strings.TrimSpace(a.Intent)
	if a.Intent == "" {
		return llmjson.Fail[Analysis](errors.New("analysis has no intent"))
	}
	a.Suggestions = nonBlank(a.Suggestions)
	if len(a.Suggestions) > maxSuggestions {
		a.Suggestions = a.Suggestions[:maxSuggestions]
	}
	a.SearchTerms = nonBlank(a.SearchTerms)
	return llmjson.Ok(a)
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func analysisSchema() *engine.Schema {
	return &engine.Schema{
		Type: "object",
		Properties: map[string]engine.SchemaProperty{
			"intent":      {Type: "string", Description: "Short description of what the user is looking for"},
			"suggestions": {Type: "array", Description: "Up to five related or refined queries", Items: &engine.SchemaProperty{Type: "string"}},
			"searchTerms": {Type: "array", Description: "Key terms extracted from the query", Items: &engine.SchemaProperty{Type: "string"}},
		},
		Required: []string{"intent", "suggestions", "searchTerms"},
	}
}
