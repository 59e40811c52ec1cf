package finder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the latest applied outcome for one client. Each action takes
// a token from Begin; only the most recently issued token may commit, so a
// slow earlier action can never overwrite a newer one.
type Session struct {
	ID string

	mu      sync.Mutex
	issued  uint64
	applied uint64
	latest  *Outcome
	updated time.Time
}

// Begin issues the next request token.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit stores o if token is the latest issued token and reports whether it
// was applied. Stale outcomes are discarded.
func (s *Session) Commit(token uint64, o Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.issued || token <= s.applied {
		return false
	}
	s.applied = token
	s.latest = &o
	s.updated = time.Now().UTC()
	return true
}

// Snapshot is the committed state of a Session.
type Snapshot struct {
	ID       string    `json:"id"`
	Sequence uint64    `json:"sequence"`
	Issued   uint64    `json:"issued"`
	Updated  time.Time `json:"updated,omitzero"`
	Outcome  *Outcome  `json:"outcome,omitempty"`
}

// Snapshot returns the latest committed outcome and its token.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{ID: s.ID, Sequence: s.applied, Issued: s.issued, Updated: s.updated}
	if s.latest != nil {
		o := *s.latest
		snap.Outcome = &o
	}
	return snap
}

// Registry defaults.
const (
	DefaultSessionIdle = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// Sessions is a registry of sessions keyed by ID. A session expires once it
// has not been looked up for the idle timeout, and when the registry is full
// the least recently used session is evicted to make room.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*entry
	idle time.Duration
	max  int
	now  func() time.Time
}

type entry struct {
	sess *Session
	used time.Time
}

// SessionsOption configures a Sessions registry.
type SessionsOption func(*Sessions)

// WithIdleTimeout sets how long an unused session is kept. Zero or less keeps
// the default.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(r *Sessions) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithMaxSessions caps the number of live sessions. Zero or less keeps the
// default.
func WithMaxSessions(n int) SessionsOption {
	return func(r *Sessions) {
		if n > 0 {
			r.max = n
		}
	}
}

// NewSessions returns an empty registry.
func NewSessions(opts ...SessionsOption) *Sessions {
	r := &Sessions{
		byID: make(map[string]*entry),
		idle: DefaultSessionIdle,
		max:  DefaultMaxSessions,
		now:  time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create registers a session under a fresh random ID.
func (r *Sessions) Create() *Session {
	return r.GetOrCreate(uuid.NewString())
}

// Get returns the live session with id and marks it used.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	if r.expired(e, now) {
		delete(r.byID, id)
		return nil, false
	}
	e.used = now
	return e.sess, true
}

// GetOrCreate returns the live session with id, registering it if needed.
func (r *Sessions) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if e, ok := r.byID[id]; ok && !r.expired(e, now) {
		e.used = now
		return e.sess
	}
	delete(r.byID, id)

	if len(r.byID) >= r.max {
		r.prune(now)
	}
	if len(r.byID) >= r.max {
		r.evictOldest()
	}
	s := &Session{ID: id}
	r.byID[id] = &entry{sess: s, used: now}
	return s
}

// Prune drops every expired session and returns how many were removed.
func (r *Sessions) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prune(r.now())
}

// Run prunes expired sessions every interval until ctx is cancelled.
func (r *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune()
		}
	}
}

func (r *Sessions) prune(now time.Time) int {
	n := 0
	for id, e := range r.byID {
		if r.expired(e, now) {
			delete(r.byID, id)
			n++
		}
	}
	return n
}

func (r *Sessions) expired(e *entry, now time.Time) bool {
	return now.Sub(e.used) >= r.idle
}

func (r *Sessions) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range r.byID {
		if oldestID == "" || e.used.Before(oldest) {
			oldestID, oldest = id, e.used
		}
	}
	delete(r.byID, oldestID)
}

// Drop ends a session. In-flight actions holding it can still commit, but
// the result is no longer reachable through the registry. The same holds
// for sessions that expire or are evicted.
func (r *Sessions) Drop(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	delete(r.byID, id)
	return ok
}

// Len returns the number of registered sessions, including expired ones not
// yet pruned.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
