package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/frank/internal/discovery"
	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/finder"
	"github.com/kalambet/frank/internal/intent"
	"github.com/kalambet/frank/internal/roster"
	"github.com/kalambet/frank/internal/scoring"
)

const testToken = "test-token-12345"

// offlineModel fails every call, so each AI component takes its fallback.
type offlineModel struct{}

func (offlineModel) Chat(context.Context, string, []engine.Message, engine.Options) (string, error) {
	return "", errors.New("model offline")
}

func newTestRoster(t *testing.T) *roster.Store {
	t.Helper()
	seed, err := expert.Seed()
	if err != nil {
		t.Fatalf("loading seed: %v", err)
	}
	r, err := roster.New(seed)
	if err != nil {
		t.Fatalf("roster.New: %v", err)
	}
	return r
}

func newTestFinder(r *roster.Store) *finder.Service {
	m := offlineModel{}
	return finder.New(
		r,
		scoring.NewScorer(m, "test-model", time.Second),
		intent.NewAnalyzer(m, "test-model", time.Second),
		discovery.NewGenerator(m, "test-model", discovery.WithRand(rand.New(rand.NewPCG(1, 2)))),
	)
}

func setupHandler(t *testing.T, token string, opts ...func(*Deps)) (http.Handler, *roster.Store) {
	t.Helper()
	r := newTestRoster(t)
	deps := Deps{
		Roster:   r,
		Finder:   newTestFinder(r),
		Sessions: finder.NewSessions(),
		Token:    token,
	}
	for _, o := range opts {
		o(&deps)
	}
	return NewHandler(deps), r
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type testEnvelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env testEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return rr, env
}

func decodeData[T any](t *testing.T, env testEnvelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decoding data %s: %v", env.Data, err)
	}
	return v
}
