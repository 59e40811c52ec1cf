package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kalambet/frank/internal/expert"
)

// timeLayout sorts lexicographically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func now() string { return time.Now().UTC().Format(timeLayout) }

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveExpert inserts or replaces the record with e.ID.
func (s *Store) SaveExpert(ctx context.Context, e expert.Expert) error {
	return s.saveExpert(ctx, s.db, e)
}

// SaveExperts stores the batch in one transaction: either every record is
// written or none is.
func (s *Store) SaveExperts(ctx context.Context, experts []expert.Expert) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	for _, e := range experts {
		if err := s.saveExpert(ctx, tx, e); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Warn("rolling back batch", "error", rbErr)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

func (s *Store) saveExpert(ctx context.Context, db execer, e expert.Expert) error {
	if e.ID == "" {
		return errors.New("saving expert: empty id")
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding expert %s: %w", e.ID, err)
	}
	ai := 0
	if e.IsAIGenerated {
		ai = 1
	}
	ts := now()
	_, err = db.ExecContext(ctx, s.rebind(`
		INSERT INTO experts (id, body, is_ai_generated, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			body = excluded.body,
			is_ai_generated = excluded.is_ai_generated,
			updated_at = excluded.updated_at`),
		e.ID, string(body), ai, ts, ts)
	if err != nil {
		return fmt.Errorf("saving expert %s: %w", e.ID, err)
	}
	return nil
}

// GetExpert returns the stored record with the given ID.
func (s *Store) GetExpert(ctx context.Context, id string) (expert.Expert, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT body FROM experts WHERE id = ?"), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return expert.Expert{}, fmt.Errorf("expert %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return expert.Expert{}, fmt.Errorf("loading expert %s: %w", id, err)
	}
	return decodeExpert(id, body)
}

// LoadExperts returns every stored record in first-saved order.
func (s *Store) LoadExperts(ctx context.Context) ([]expert.Expert, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, body FROM experts ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing experts: %w", err)
	}
	defer rows.Close()

	var out []expert.Expert
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scanning expert: %w", err)
		}
		e, err := decodeExpert(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountExperts returns the number of stored records.
func (s *Store) CountExperts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM experts").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting experts: %w", err)
	}
	return n, nil
}

func decodeExpert(id, body string) (expert.Expert, error) {
	var e expert.Expert
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return expert.Expert{}, fmt.Errorf("decoding expert %s: %w", id, err)
	}
	return e, nil
}

// Health is the result of a storage health check.
type Health struct {
	Status    string    `json:"status"`
	Experts   int       `json:"experts"`
	Schema    int       `json:"schema"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck checks the database by counting expert rows.
func (s *Store) HealthCheck(ctx context.Context) Health {
	h := Health{Timestamp: time.Now().UTC()}
	n, err := s.CountExperts(ctx)
	if err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
		return h
	}
	schema, err := s.SchemaVersion(ctx)
	if err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
		return h
	}
	h.Status = StatusHealthy
	h.Experts = n
	h.Schema = schema
	return h
}
