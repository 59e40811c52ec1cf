// Package finder runs the expert search flows: keyword search, AI search
// with concurrent scoring and intent analysis, and discovery of new external
// experts.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/frank/internal/discovery"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/intent"
	"github.com/kalambet/frank/internal/search"
)

// Mode selects how Search ranks the roster.
type Mode string

const (
	ModeAI      Mode = "ai"
	ModeKeyword Mode = "keyword"
)

// ParseMode maps "" to ModeAI and rejects unknown modes.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAI:
		return ModeAI, nil
	case ModeKeyword:
		return ModeKeyword, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want ai or keyword)", s)
	}
}

// Roster is the part of the expert store the service reads and appends to.
type Roster interface {
	All() []expert.Expert
	Has(id string) bool
	AppendGenerated(ctx context.Context, experts []expert.Expert) error
}

type Scorer interface {
	Score(ctx context.Context, query string, candidates []expert.Expert) []expert.Match
}

type Analyzer interface {
	Analyze(ctx context.Context, query string) intent.Analysis
}

type Generator interface {
	Generate(ctx context.Context, query string, reg discovery.Registry) []expert.Expert
}

// Outcome is the result of one search or discovery action.
type Outcome struct {
	Query     string           `json:"query"`
	Mode      Mode             `json:"mode"`
	Results   []expert.Match   `json:"results"`
	Analysis  *intent.Analysis `json:"analysis,omitempty"`
	Generated []expert.Expert  `json:"generated,omitempty"`
}

// Service wires the store to the AI components.
type Service struct {
	roster    Roster
	scorer    Scorer
	analyzer  Analyzer
	generator Generator
	logger    *slog.Logger
}

// New creates a Service.
func New(r Roster, sc Scorer, an Analyzer, gen Generator) *Service {
	return &Service{
		roster:    r,
		scorer:    sc,
		analyzer:  an,
		generator: gen,
		logger:    slog.Default().With("component", "finder"),
	}
}

// Search ranks the whole roster against query. A blank query yields an empty
// outcome without calling any model.
func (s *Service) Search(ctx context.Context, query string, mode Mode) (Outcome, error) {
	if mode == "" {
		mode = ModeAI
	}
	out := Outcome{Query: query, Mode: mode, Results: []expert.Match{}}
	if strings.TrimSpace(query) == "" {
		return out, nil
	}

	switch mode {
	case ModeKeyword:
		out.Results = plain(search.Keyword(query, s.roster.All()))
	case ModeAI:
		all := s.roster.All()
		var (
			results  []expert.Match
			analysis intent.Analysis
			g        errgroup.Group
		)
		// Both calls absorb their own failures, so neither goroutine can
		// cancel the other.
		g.Go(func() error {
			results = s.scorer.Score(ctx, query, all)
			return nil
		})
		g.Go(func() error {
			analysis = s.analyzer.Analyze(ctx, query)
			return nil
		})
		_ = g.Wait()
		out.Results = results
		out.Analysis = &analysis
	default:
		return Outcome{}, fmt.Errorf("unknown search mode %q", mode)
	}

	s.logger.Debug("search complete", "mode", mode, "results", len(out.Results))
	return out, nil
}

// Discover generates new experts for query, adds them to the roster, and
// re-scores the enlarged roster. A blank query generates nothing.
func (s *Service) Discover(ctx context.Context, query string) (Outcome, error) {
	out := Outcome{Query: query, Mode: ModeAI, Results: []expert.Match{}, Generated: []expert.Expert{}}
	if strings.TrimSpace(query) == "" {
		return out, nil
	}

	generated := s.generator.Generate(ctx, query, s.roster)
	if err := s.roster.AppendGenerated(ctx, generated); err != nil {
		return Outcome{}, fmt.Errorf("storing generated experts: %w", err)
	}
	s.logger.Info("discovered experts", "count", len(generated))

	out.Generated = append(out.Generated, generated...)
	out.Results = s.scorer.Score(ctx, query, s.roster.All())
	return out, nil
}

func plain(experts []expert.Expert) []expert.Match {
	out := make([]expert.Match, len(experts))
	for i, e := range experts {
		out[i] = expert.Match{Expert: e}
	}
	return out
}
