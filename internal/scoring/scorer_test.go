package scoring

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/search"
)

type mockChatter struct {
	response string
	err      error
	delay    time.Duration
	calls    int
	prompt   string
}

func (m *mockChatter) Chat(ctx context.Context, _ string, msgs []engine.Message, _ engine.Options) (string, error) {
	m.calls++
	if len(msgs) > 0 {
		m.prompt = msgs[len(msgs)-1].Content
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func seed(t *testing.T) []expert.Expert {
	t.Helper()
	experts, err := expert.Seed()
	if err != nil {
		t.Fatalf("loading seed: %v", err)
	}
	return experts
}

func candidates() []expert.Expert {
	return []expert.Expert{
		{ID: "a", Name: "Alpha", Type: expert.TypeInternal, Expertise: []string{"Mining"}},
		{ID: "b", Name: "Bravo", Type: expert.TypeExternal, Expertise: []string{"Robotics"}},
		{ID: "c", Name: "Charlie", Type: expert.TypeExternal, Expertise: []string{"Mining Safety"}},
		{ID: "d", Name: "Delta", Type: expert.TypeInternal, Expertise: []string{"Nuclear"}},
	}
}

func matchIDs(ms []expert.Match) string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	return strings.Join(ids, ",")
}

func TestScore_RanksAndFilters(t *testing.T) {
	mock := &mockChatter{response: `[
		{"expertIndex": 0, "score": 0.6, "explanation": "mining background"},
		{"expertIndex": 1, "score": 0.1, "explanation": "unrelated"},
		{"expertIndex": 2, "score": 0.9, "explanation": "mining safety"},
		{"expertIndex": 3, "score": 0.0, "explanation": "nuclear"}
	]`}
	got := NewScorer(mock, "m", 0).Score(context.Background(), "mining", candidates())

	if matchIDs(got) != "c,a" {
		t.Fatalf("order = %s, want c,a", matchIDs(got))
	}
	if got[0].AIScore != 0.9 || got[0].MatchExplanation != "mining safety" {
		t.Errorf("top match = %+v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].AIScore > got[i-1].AIScore {
			t.Errorf("not sorted at %d", i)
		}
	}
	for _, m := range got {
		if m.AIScore <= MinScore {
			t.Errorf("%s kept with score %v", m.ID, m.AIScore)
		}
	}
}

func TestScore_TiesKeepInputOrder(t *testing.T) {
	mock := &mockChatter{response: `[
		{"expertIndex": 3, "score": 0.5, "explanation": ""},
		{"expertIndex": 1, "score": 0.5, "explanation": ""},
		{"expertIndex": 0, "score": 0.7, "explanation": ""}
	]`}
	got := NewScorer(mock, "m", 0).Score(context.Background(), "q", candidates())
	if matchIDs(got) != "a,b,d" {
		t.Errorf("order = %s, want a,b,d", matchIDs(got))
	}
}

func TestScore_MissingEntriesDropped(t *testing.T) {
	mock := &mockChatter{response: `[{"expertIndex": 2, "score": 0.8, "explanation": "x"}]`}
	got := NewScorer(mock, "m", 0).Score(context.Background(), "q", candidates())
	if matchIDs(got) != "c" {
		t.Errorf("got %s, want c", matchIDs(got))
	}
}

func TestScore_ShapeFailuresFallBack(t *testing.T) {
	cases := map[string]string{
		"not json":        "I could not rate these experts.",
		"object":          `{"expertIndex": 0, "score": 0.5}`,
		"out of range":    `[{"expertIndex": 4, "score": 0.9, "explanation": ""}]`,
		"negative index":  `[{"expertIndex": -1, "score": 0.9, "explanation": ""}]`,
		"duplicate index": `[{"expertIndex": 0, "score": 0.9}, {"expertIndex": 0, "score": 0.2}]`,
		"score too big":   `[{"expertIndex": 0, "score": 1.5}]`,
		"missing score":   `[{"expertIndex": 0, "explanation": "?"}]`,
		"string score":    `[{"expertIndex": 0, "score": "high"}]`,
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			got := NewScorer(&mockChatter{response: resp}, "m", 0).Score(context.Background(), "mining", candidates())
			if matchIDs(got) != "a,c" {
				t.Fatalf("got %s, want keyword fallback a,c", matchIDs(got))
			}
			for _, m := range got {
				if m.AIScore != FallbackScore || m.MatchExplanation != FallbackExplanation {
					t.Errorf("%s = %v %q", m.ID, m.AIScore, m.MatchExplanation)
				}
			}
		})
	}
}

func TestScore_ForcedFailureMatchesKeywordSearch(t *testing.T) {
	roster := seed(t)
	mock := &mockChatter{err: errors.New("503 service unavailable")}
	got := NewScorer(mock, "m", 0).Score(context.Background(), "mining", roster)

	want := search.Keyword("mining", roster)
	if len(got) != len(want) || len(want) == 0 {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("result %d = %s, want %s", i, got[i].ID, want[i].ID)
		}
		if got[i].AIScore != 0.5 || got[i].MatchExplanation != got[0].MatchExplanation {
			t.Errorf("result %d tagged %v %q", i, got[i].AIScore, got[i].MatchExplanation)
		}
	}
}

func TestScore_FallbackLogsComponent(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	s := NewScorer(&mockChatter{err: errors.New("backend down")}, "m", time.Second)
	s.Score(context.Background(), "mining", candidates())

	out := buf.String()
	if !strings.Contains(out, "component=scoring") || !strings.Contains(out, "backend down") {
		t.Errorf("log output = %q", out)
	}
}

func TestScore_TimeoutFallsBack(t *testing.T) {
	mock := &mockChatter{response: `[]`, delay: time.Second}
	start := time.Now()
	got := NewScorer(mock, "m", 50*time.Millisecond).Score(context.Background(), "robotics", candidates())
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Score not bounded by timeout")
	}
	if matchIDs(got) != "b" || got[0].AIScore != FallbackScore {
		t.Errorf("got %+v", got)
	}
}

func TestScore_EmptyInputsSkipModel(t *testing.T) {
	mock := &mockChatter{}
	s := NewScorer(mock, "m", 0)
	if got := s.Score(context.Background(), "  ", candidates()); got == nil || len(got) != 0 {
		t.Errorf("blank query = %v", got)
	}
	if got := s.Score(context.Background(), "mining", nil); got == nil || len(got) != 0 {
		t.Errorf("no candidates = %v", got)
	}
	if mock.calls != 0 {
		t.Errorf("model called %d times", mock.calls)
	}
}

func TestScore_DoesNotMutateCandidates(t *testing.T) {
	in := candidates()
	mock := &mockChatter{response: `[{"expertIndex": 0, "score": 0.9, "explanation": "x"}]`}
	got := NewScorer(mock, "m", 0).Score(context.Background(), "q", in)
	got[0].Expertise[0] = "changed"
	got[0].Name = "changed"
	if in[0].Name != "Alpha" || in[0].Expertise[0] != "Mining" {
		t.Error("candidate mutated through match")
	}
}

func TestBuildPrompt(t *testing.T) {
	msgs := BuildPrompt("mining", candidates())
	c := msgs[0].Content
	for _, want := range []string{`"mining"`, "Expert [0]:", "Expert [3]:", "- Name: Delta", "- Expertise: Mining Safety", "expertIndex"} {
		if !strings.Contains(c, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
