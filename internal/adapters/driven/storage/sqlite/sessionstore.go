package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore persists dialog sessions as JSON rows.
// A session not saved within ttl is treated as missing and removed on access.
type SessionStore struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time
}

// Create stores state under a new id.
func (s *SessionStore) Create(ctx context.Context, state *domain.SessionState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshalling session: %w", err)
	}

	id := uuid.NewString()
	ts := s.now().UnixMilli()
	_, err = s.store.db.ExecContext(ctx,
		"INSERT INTO sessions (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, string(data), ts, ts)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

// Get returns the session or domain.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.SessionState, error) {
	var (
		data      string
		updatedAt int64
	)
	err := s.store.db.QueryRowContext(ctx, "SELECT state, updated_at FROM sessions WHERE id = ?", id).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	if s.expired(updatedAt) {
		_ = s.Delete(ctx, id)
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	var state domain.SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshalling session: %w", err)
	}
	if state.Feelings == nil {
		state.Feelings = []string{}
	}
	if state.Turns == nil {
		state.Turns = []domain.Turn{}
	}
	return &state, nil
}

// Save replaces an existing session and refreshes its expiry.
func (s *SessionStore) Save(ctx context.Context, id string, state *domain.SessionState) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx,
		"UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?",
		string(data), s.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Purge removes every expired session and returns how many were removed.
func (s *SessionStore) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SessionStore) expired(updatedAt int64) bool {
	return s.ttl > 0 && s.now().Sub(time.UnixMilli(updatedAt)) > s.ttl
}
