// Package discovery fabricates plausible new expert profiles for a query
// when the roster has no good match.
package discovery

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/llmjson"
)

const (
	defaultTimeout = 30 * time.Second
	minProfiles    = 2
	maxProfiles    = 3
)

// Chatter is the slice of engine.Engine the generator needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []engine.Message, opts engine.Options) (string, error)
}

// Registry reports whether an ID is already taken.
type Registry interface {
	Has(id string) bool
}

// Generator produces AI-generated experts.
type Generator struct {
	client  Chatter
	model   string
	timeout time.Duration
	policy  TypePolicy
	logger  *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source used for type, lead, and experience draws.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

// WithTypePolicy replaces DefaultTypePolicy.
func WithTypePolicy(p TypePolicy) Option {
	return func(g *Generator) { g.policy = p }
}

// WithTimeout bounds the model call. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGenerator creates a Generator.
func NewGenerator(client Chatter, model string, opts ...Option) *Generator {
	g := &Generator{
		client:  client,
		model:   model,
		timeout: defaultTimeout,
		policy:  DefaultTypePolicy(),
		logger:  slog.Default().With("component", "discovery"),
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

type rawProfile struct {
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Industry        string   `json:"industry"`
	Function        string   `json:"function"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Expertise       []string `json:"expertise"`
	Bio             string   `json:"bio"`
	Notes           string   `json:"notes"`
	YearsExperience *float64 `json:"yearsExperience"`
	Certifications  []string `json:"certifications"`
	Availability    string   `json:"availability"`
}

// Generate returns 2 or 3 new experts for query, each flagged as AI-generated,
// carrying an ID not taken in reg, and a lead from Leads. When the model
// cannot be used the experts come from fixed templates chosen by keywords in
// the query. Generate never fails; the caller stores the result.
func (g *Generator) Generate(ctx context.Context, query string, reg Registry) []expert.Expert {
	profiles, fromModel := g.modelProfiles(ctx, query)
	if !fromModel {
		profiles = fallbackProfiles(query)
	}

	taken := make(map[string]struct{}, len(profiles))
	out := make([]expert.Expert, len(profiles))
	for i, e := range profiles {
		e.ID = newID(reg, taken)
		e.Photo = AvatarURL(e.Name)
		e.Lead = expert.Ptr(g.pickLead())
		e.LastContact = nil
		e.IsAIGenerated = true
		if e.Expertise == nil {
			e.Expertise = []string{}
		}
		if e.Certifications == nil {
			e.Certifications = []string{}
		}
		out[i] = e
	}
	return out
}

func (g *Generator) modelProfiles(ctx context.Context, query string) ([]expert.Expert, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.client.Chat(ctx, g.model, BuildPrompt(query), engine.Options{
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		g.logger.Warn("expert generation failed, using templates", "error", err)
		return nil, false
	}

	res := parseProfiles(raw)
	if !res.OK() {
		g.logger.Warn("expert generation response unusable, using templates", "error", res.Reason)
		g.logger.Debug("expert generation raw response", "response", llmjson.Compact(raw))
		return nil, false
	}

	out := make([]expert.Expert, len(res.Value))
	for i, p := range res.Value {
		out[i] = g.fromRaw(p)
	}
	return out, true
}

func parseProfiles(raw string) llmjson.Result[[]rawProfile] {
	res := llmjson.DecodeArrayOrObject[rawProfile](raw)
	if !res.OK() {
		return res
	}
	usable := make([]rawProfile, 0, maxProfiles)
	for _, p := range res.Value {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		usable = append(usable, p)
		if len(usable) == maxProfiles {
			break
		}
	}
	if len(usable) < minProfiles {
		return llmjson.Failf[[]rawProfile]("got %d usable profiles, want at least %d", len(usable), minProfiles)
	}
	return llmjson.Ok(usable)
}

func (g *Generator) fromRaw(p rawProfile) expert.Expert {
	g.mu.Lock()
	draw := g.rnd.Float64()
	years := 10 + g.rnd.IntN(20)
	g.mu.Unlock()

	if p.YearsExperience != nil && *p.YearsExperience > 0 {
		years = int(*p.YearsExperience)
	}
	return expert.Expert{
		Name:            strings.TrimSpace(p.Name),
		Location:        p.Location,
		Industry:        p.Industry,
		Function:        p.Function,
		Email:           p.Email,
		Phone:           p.Phone,
		Type:            g.policy.Assign(p.Location, draw),
		Availability:    expert.ParseAvailability(p.Availability),
		Expertise:       p.Expertise,
		Certifications:  p.Certifications,
		YearsExperience: years,
		Bio:             p.Bio,
		Notes:           p.Notes,
	}
}

func (g *Generator) pickLead() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Leads[g.rnd.IntN(len(Leads))]
}

func newID(reg Registry, taken map[string]struct{}) string {
	for {
		id := "ai-" + uuid.NewString()
		if _, dup := taken[id]; dup {
			continue
		}
		if reg != nil && reg.Has(id) {
			continue
		}
		taken[id] = struct{}{}
		return id
	}
}

// AvatarURL returns the placeholder avatar for a generated expert.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=6366F1&color=fff&size=200"
}
