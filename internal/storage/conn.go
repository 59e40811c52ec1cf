package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kalambet/frank/internal/expert"
)

// ErrClosed is returned by a Conn after Close.
var ErrClosed = errors.New("storage connection closed")

// Conn opens its Store on first use and shares it afterwards. It satisfies
// the roster's persister so the database is only touched when needed.
type Conn struct {
	open func() (*Store, error)

	once  sync.Once
	store *Store
	err   error

	mu     sync.Mutex
	closed bool
}

// NewConn returns a lazy connection for driver and dsn.
func NewConn(driver, dsn string) *Conn {
	return &Conn{open: func() (*Store, error) { return Open(driver, dsn) }}
}

// NewDirConn returns a lazy SQLite connection rooted at dataDir.
func NewDirConn(dataDir string) *Conn {
	return &Conn{open: func() (*Store, error) { return OpenDir(dataDir) }}
}

// Store returns the shared Store, opening it on the first call. An open
// failure is sticky.
func (c *Conn) Store() (*Store, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	c.once.Do(func() {
		c.store, c.err = c.open()
		if c.err != nil {
			c.err = fmt.Errorf("connecting to storage: %w", c.err)
		}
	})
	return c.store, c.err
}

// Close closes the Store if it was opened. Close is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	// Make sure a later Store call cannot open a fresh connection.
	c.once.Do(func() { c.err = ErrClosed })
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

func (c *Conn) SaveExpert(ctx context.Context, e expert.Expert) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.SaveExpert(ctx, e)
}

func (c *Conn) SaveExperts(ctx context.Context, experts []expert.Expert) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.SaveExperts(ctx, experts)
}

func (c *Conn) LoadExperts(ctx context.Context) ([]expert.Expert, error) {
	s, err := c.Store()
	if err != nil {
		return nil, err
	}
	return s.LoadExperts(ctx)
}

// HealthCheck reports unhealthy when the connection cannot be opened.
func (c *Conn) HealthCheck(ctx context.Context) Health {
	s, err := c.Store()
	if err != nil {
		return Health{Status: StatusUnhealthy, Timestamp: time.Now().UTC(), Error: err.Error()}
	}
	return s.HealthCheck(ctx)
}
