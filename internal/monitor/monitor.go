// Package monitor periodically checks storage health and keeps connection
// statistics for the health endpoint.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/frank/internal/storage"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 60 * time.Second

// Checker runs a storage health check.
type Checker interface {
	HealthCheck(ctx context.Context) storage.Health
}

// Stats is a snapshot of the monitor's counters.
type Stats struct {
	TotalChecks int       `json:"totalChecks"`
	Failures    int       `json:"failures"`
	LastCheck   time.Time `json:"lastCheck,omitzero"`
	LastStatus  string    `json:"lastStatus"`
	LastError   string    `json:"lastError,omitempty"`
	Experts     int       `json:"experts"`
	Schema      int       `json:"schema"`
	Uptime      string    `json:"uptime"`
}

// Monitor polls a Checker until its context is cancelled.
type Monitor struct {
	checker  Checker
	interval time.Duration
	logger   *slog.Logger
	started  time.Time
	now      func() time.Time

	mu    sync.Mutex
	stats Stats
}

// New creates a Monitor. If interval is <= 0 it defaults to DefaultInterval.
func New(checker Checker, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m := &Monitor{
		checker:  checker,
		interval: interval,
		logger:   slog.Default().With("component", "monitor"),
		now:      time.Now,
	}
	m.started = m.now()
	m.stats.LastStatus = "unknown"
	return m
}

// Run checks once immediately, then every interval, until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		m.CheckOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CheckOnce runs one health check, records it, and returns the result.
func (m *Monitor) CheckOnce(ctx context.Context) storage.Health {
	h := m.checker.HealthCheck(ctx)

	m.mu.Lock()
	m.stats.TotalChecks++
	n := m.stats.TotalChecks
	m.stats.LastCheck = h.Timestamp
	m.stats.LastStatus = h.Status
	m.stats.LastError = h.Error
	if h.Status == storage.StatusHealthy {
		m.stats.Experts = h.Experts
		m.stats.Schema = h.Schema
	} else {
		m.stats.Failures++
	}
	m.mu.Unlock()

	if h.Status == storage.StatusHealthy {
		m.logger.Debug("storage healthy", "check", n, "experts", h.Experts)
	} else {
		m.logger.Warn("storage unhealthy", "check", n, "error", h.Error)
	}
	return h
}

// Stats returns a copy of the current statistics.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()
	s.Uptime = m.now().Sub(m.started).Round(time.Second).String()
	return s
}
