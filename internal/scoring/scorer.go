// Package scoring ranks experts against a free-text query with a language
// model, falling back to keyword matching when the model cannot be used.
package scoring

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/llmjson"
	"github.com/kalambet/frank/internal/search"
)

const (
	defaultTimeout = 20 * time.Second

	// MinScore is the exclusive lower bound for a match to be kept.
	MinScore = 0.1

	// FallbackScore and FallbackExplanation tag keyword matches returned
	// when the model path is abandoned.
	FallbackScore       = 0.5
	FallbackExplanation = "keyword match"
)

// Chatter is the slice of engine.Engine the scorer needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []engine.Message, opts engine.Options) (string, error)
}

// Scorer attaches model-assigned relevance scores to candidate experts.
type Scorer struct {
	client  Chatter
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewScorer creates a Scorer. A zero timeout uses the default.
func NewScorer(client Chatter, model string, timeout time.Duration) *Scorer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scorer{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  slog.Default().With("component", "scoring"),
	}
}

type rating struct {
	ExpertIndex *int     `json:"expertIndex"`
	Score       *float64 `json:"score"`
	Explanation string   `json:"explanation"`
}

// Score ranks candidates against query. Results scoring at or below MinScore
// are dropped and the rest are sorted by score descending, ties keeping input
// order. If the model call or its response fails in any way, the keyword
// matches of query over candidates are returned instead, each tagged with
// FallbackScore. Score never fails.
func (s *Scorer) Score(ctx context.Context, query string, candidates []expert.Expert) []expert.Match {
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return []expert.Match{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Chat(ctx, s.model, BuildPrompt(query, candidates), engine.Options{
		Temperature: 0.3,
		MaxTokens:   2000,
		Schema:      ratingSchema(),
	})
	if err != nil {
		s.logger.Warn("semantic scoring failed, using keyword fallback", "error", err, "candidates", len(candidates))
		return Fallback(query, candidates)
	}

	res := parseRatings(raw, len(candidates))
	if !res.OK() {
		s.logger.Warn("semantic scoring response unusable, using keyword fallback", "error", res.Reason)
		s.logger.Debug("semantic scoring raw response", "response", llmjson.Compact(raw))
		return Fallback(query, candidates)
	}
	return rank(res.Value, candidates)
}

// Fallback returns the keyword matches of query, tagged with the fixed
// fallback score and explanation.
func Fallback(query string, candidates []expert.Expert) []expert.Match {
	hits := search.Keyword(query, candidates)
	out := make([]expert.Match, len(hits))
	for i, e := range hits {
		out[i] = expert.Match{Expert: e, AIScore: FallbackScore, MatchExplanation: FallbackExplanation}
	}
	return out
}

// parseRatings decodes the model's rating list and checks it against the
// candidate count. Candidates without a rating are treated as not relevant.
func parseRatings(raw string, n int) llmjson.Result[[]rating] {
	res := llmjson.DecodeArray[rating](raw)
	if !res.OK() {
		return res
	}
	seen := make(map[int]struct{}, len(res.Value))
	for _, r := range res.Value {
		if r.ExpertIndex == nil || r.Score == nil {
			return llmjson.Failf[[]rating]("rating is missing expertIndex or score")
		}
		i, sc := *r.ExpertIndex, *r.Score
		if i < 0 || i >= n {
			return llmjson.Failf[[]rating]("expertIndex %d out of range [0,%d)", i, n)
		}
		if _, dup := seen[i]; dup {
			return llmjson.Failf[[]rating]("duplicate expertIndex %d", i)
		}
		seen[i] = struct{}{}
		if math.IsNaN(sc) || sc < 0 || sc > 1 {
			return llmjson.Failf[[]rating]("score %v for expertIndex %d outside [0,1]", sc, i)
		}
	}
	return res
}

func rank(ratings []rating, candidates []expert.Expert) []expert.Match {
	// Sort by candidate index first so the stable sort below breaks ties by
	// input order regardless of the order the model listed them in.
	slices.SortFunc(ratings, func(a, b rating) int {
		return cmp.Compare(*a.ExpertIndex, *b.ExpertIndex)
	})

	out := make([]expert.Match, 0, len(ratings))
	for _, r := range ratings {
		if *r.Score <= MinScore {
			continue
		}
		out = append(out, expert.Match{
			Expert:           candidates[*r.ExpertIndex].Clone(),
			AIScore:          *r.Score,
			MatchExplanation: strings.TrimSpace(r.Explanation),
		})
	}
	slices.SortStableFunc(out, func(a, b expert.Match) int {
		return cmp.Compare(b.AIScore, a.AIScore)
	})
	return out
}

func ratingSchema() *engine.Schema {
	return &engine.Schema{
		Type: "array",
		Items: &engine.SchemaProperty{
			Type:        "object",
			Description: "One rating per expert: expertIndex (integer), score (number 0.0-1.0), explanation (string)",
		},
	}
}
