package finder

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LatestTokenWins(t *testing.T) {
	s := &Session{ID: "s"}

	first := s.Begin()
	second := s.Begin()
	assert.Greater(t, second, first)

	assert.True(t, s.Commit(second, Outcome{Query: "second"}))
	assert.False(t, s.Commit(first, Outcome{Query: "first"}), "stale result must be discarded")

	snap := s.Snapshot()
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, "second", snap.Outcome.Query)
	assert.Equal(t, second, snap.Sequence)
}

func TestSession_EarlierTokenDiscardedEvenIfFirstToResolve(t *testing.T) {
	s := &Session{}
	first := s.Begin()
	_ = s.Begin()

	assert.False(t, s.Commit(first, Outcome{Query: "old"}))
	assert.Nil(t, s.Snapshot().Outcome)
}

func TestSession_CommitOnce(t *testing.T) {
	s := &Session{}
	tok := s.Begin()
	assert.True(t, s.Commit(tok, Outcome{Query: "a"}))
	assert.False(t, s.Commit(tok, Outcome{Query: "b"}))
	assert.Equal(t, "a", s.Snapshot().Outcome.Query)
}

func TestSession_UnknownToken(t *testing.T) {
	s := &Session{}
	assert.False(t, s.Commit(7, Outcome{}))
}

func TestSession_ConcurrentBegins(t *testing.T) {
	s := &Session{}
	var wg sync.WaitGroup
	tokens := make(chan uint64, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- s.Begin()
		}()
	}
	wg.Wait()
	close(tokens)

	seen := map[uint64]bool{}
	applied := 0
	for tok := range tokens {
		assert.False(t, seen[tok], "token %d issued twice", tok)
		seen[tok] = true
		if s.Commit(tok, Outcome{}) {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, uint64(50), s.Snapshot().Sequence)
}

func TestSessions_Registry(t *testing.T) {
	r := NewSessions()

	_, ok := r.Get("a")
	assert.False(t, ok)

	a := r.GetOrCreate("a")
	assert.Same(t, a, r.GetOrCreate("a"))

	c := r.Create()
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 2, r.Len())

	assert.True(t, r.Drop("a"))
	assert.False(t, r.Drop("a"))
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedSessions(opts ...SessionsOption) (*Sessions, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewSessions(opts...)
	r.now = clock.now
	return r, clock
}

func TestSessions_IdleExpiry(t *testing.T) {
	r, clock := newClockedSessions(WithIdleTimeout(time.Minute))

	a := r.GetOrCreate("a")
	a.Commit(a.Begin(), Outcome{Query: "robots"})
	clock.advance(30 * time.Second)
	_, ok := r.Get("a")
	require.True(t, ok, "lookup inside the idle window")

	// The lookup above refreshed the session.
	clock.advance(45 * time.Second)
	_, ok = r.Get("a")
	require.True(t, ok)

	clock.advance(time.Minute)
	_, ok = r.Get("a")
	assert.False(t, ok, "expired session still reachable")
	assert.Zero(t, r.Len())

	fresh := r.GetOrCreate("a")
	assert.NotSame(t, a, fresh)
	assert.Nil(t, fresh.Snapshot().Outcome)
}

func TestSessions_Prune(t *testing.T) {
	r, clock := newClockedSessions(WithIdleTimeout(time.Minute))
	r.GetOrCreate("old")
	clock.advance(50 * time.Second)
	r.GetOrCreate("new")
	clock.advance(20 * time.Second)

	assert.Equal(t, 1, r.Prune())
	_, ok := r.Get("new")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestSessions_EvictsLeastRecentlyUsed(t *testing.T) {
	r, clock := newClockedSessions(WithMaxSessions(3))
	for _, id := range []string{"a", "b", "c"} {
		r.GetOrCreate(id)
		clock.advance(time.Second)
	}
	r.Get("a")
	clock.advance(time.Second)

	r.GetOrCreate("d")
	assert.Equal(t, 3, r.Len())
	_, ok := r.Get("b")
	assert.False(t, ok, "least recently used session should be evicted")
	for _, id := range []string{"a", "c", "d"} {
		_, ok := r.Get(id)
		assert.True(t, ok, id)
	}
}

func TestSessions_BoundedUnderRotatingIDs(t *testing.T) {
	r := NewSessions(WithMaxSessions(100))
	for i := range 10000 {
		r.GetOrCreate(fmt.Sprintf("client-%d", i)).Begin()
	}
	assert.Equal(t, 100, r.Len())
}

func TestSessions_RunStopsOnCancel(t *testing.T) {
	r := NewSessions(WithIdleTimeout(time.Nanosecond))
	r.GetOrCreate("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
