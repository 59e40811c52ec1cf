package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls after repeated
// backend failures.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// Cooldown is how long the circuit stays open before a trial request is allowed.
	Cooldown time.Duration
	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerConfig trips after 3 failures and retries after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 3, Cooldown: 30 * time.Second, HalfOpenRequests: 1}
}

// Breaker wraps an Engine so that a failing backend is skipped quickly and
// callers go straight to their fallback path.
type Breaker struct {
	Engine
	cb *gobreaker.CircuitBreaker
}

// NewBreaker wraps e with a circuit breaker.
func NewBreaker(e Engine, cfg BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the backend's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("llm circuit breaker state change", "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{Engine: e, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Engine.Chat(ctx, model, messages, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return out.(string), nil
}

// State returns "closed", "open" or "half-open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}
