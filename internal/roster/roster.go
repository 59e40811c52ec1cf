// Package roster holds the expert records the service searches and edits:
// the seed collection loaded at startup and the AI-generated collection
// that grows at runtime.
package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kalambet/frank/internal/expert"
)

var (
	ErrNotFound    = errors.New("expert not found")
	ErrDuplicateID = errors.New("duplicate expert id")
	ErrInvalidPage = errors.New("invalid page: limit must be 1-100 and offset >= 0")
)

// Persister stores records so edits and generated experts survive a restart.
type Persister interface {
	SaveExpert(ctx context.Context, e expert.Expert) error
	// SaveExperts writes the whole batch or nothing.
	SaveExperts(ctx context.Context, experts []expert.Expert) error
	LoadExperts(ctx context.Context) ([]expert.Expert, error)
}

type slot struct {
	generated bool
	i         int
}

// Store is the in-memory expert store. It is safe for concurrent use.
// Records are never deleted.
type Store struct {
	mu        sync.RWMutex
	seed      []expert.Expert
	generated []expert.Expert
	index     map[string]slot
	persist   Persister
}

// Option configures a Store.
type Option func(*Store)

// WithPersister writes every edit and append through to p.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persist = p }
}

// New creates a Store holding copies of seed. Seed IDs must be unique.
func New(seed []expert.Expert, opts ...Option) (*Store, error) {
	s := &Store{
		seed:  make([]expert.Expert, 0, len(seed)),
		index: make(map[string]slot, len(seed)),
	}
	for _, o := range opts {
		o(s)
	}
	for _, e := range seed {
		if _, dup := s.index[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		s.index[e.ID] = slot{i: len(s.seed)}
		s.seed = append(s.seed, e.Clone())
	}
	return s, nil
}

// Restore merges persisted records into the store. A persisted seed record
// replaces the seed copy with the same ID; persisted AI-generated records
// are added to the generated collection.
func (s *Store) Restore(ctx context.Context) (int, error) {
	if s.persist == nil {
		return 0, nil
	}
	records, err := s.persist.LoadExperts(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading persisted experts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range records {
		if at, ok := s.index[e.ID]; ok {
			s.put(at, e)
			continue
		}
		if e.IsAIGenerated {
			s.index[e.ID] = slot{generated: true, i: len(s.generated)}
			s.generated = append(s.generated, e.Clone())
		} else {
			s.index[e.ID] = slot{i: len(s.seed)}
			s.seed = append(s.seed, e.Clone())
		}
	}
	return len(records), nil
}

func (s *Store) at(sl slot) expert.Expert {
	if sl.generated {
		return s.generated[sl.i]
	}
	return s.seed[sl.i]
}

func (s *Store) put(sl slot, e expert.Expert) {
	if sl.generated {
		s.generated[sl.i] = e.Clone()
	} else {
		s.seed[sl.i] = e.Clone()
	}
}

// Get returns a copy of the expert with the given ID, looking in the seed
// collection first and then the generated one.
func (s *Store) Get(id string) (expert.Expert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.index[id]
	if !ok {
		return expert.Expert{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.at(sl).Clone(), nil
}

// Has reports whether id is taken in either collection.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Len returns the total number of experts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seed) + len(s.generated)
}

// All returns copies of every expert, seed first.
func (s *Store) All() []expert.Expert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]expert.Expert, 0, len(s.seed)+len(s.generated))
	for _, e := range s.seed {
		out = append(out, e.Clone())
	}
	for _, e := range s.generated {
		out = append(out, e.Clone())
	}
	return out
}

// Generated returns copies of the AI-generated experts in insertion order.
func (s *Store) Generated() []expert.Expert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]expert.Expert, len(s.generated))
	for i, e := range s.generated {
		out[i] = e.Clone()
	}
	return out
}

// AppendGenerated adds experts to the AI-generated collection. Records are
// not validated. The whole batch is rejected if any ID is already taken, and
// nothing is added unless the persister stored every record.
func (s *Store) AppendGenerated(ctx context.Context, experts []expert.Expert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(experts))
	for _, e := range experts {
		if e.ID == "" {
			return errors.New("generated expert has no id")
		}
		_, taken := s.index[e.ID]
		_, repeated := batch[e.ID]
		if taken || repeated {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		batch[e.ID] = struct{}{}
	}

	staged := make([]expert.Expert, len(experts))
	for i, e := range experts {
		staged[i] = e.Clone()
		staged[i].IsAIGenerated = true
	}
	if s.persist != nil {
		if err := s.persist.SaveExperts(ctx, staged); err != nil {
			return fmt.Errorf("persisting generated experts: %w", err)
		}
	}
	for _, e := range staged {
		s.index[e.ID] = slot{generated: true, i: len(s.generated)}
		s.generated = append(s.generated, e)
	}
	return nil
}
