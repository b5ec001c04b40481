package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps dialog sessions in process memory.
// Every Save refreshes the expiry, so only idle sessions expire.
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore creates a store expiring sessions idle for ttl.
// A ttl of zero keeps sessions until the process exits.
func NewSessionStore(ttl time.Duration) *SessionStore {
	expiry := ttl
	if expiry <= 0 {
		expiry = cache.NoExpiration
	}
	// Purge expired sessions every 10 minutes
	return &SessionStore{
		cache: cache.New(expiry, 10*time.Minute),
	}
}

// Create stores a copy of state under a new id.
func (s *SessionStore) Create(_ context.Context, state *domain.SessionState) (string, error) {
	id := uuid.NewString()
	s.cache.Set(id, state.Clone(), cache.DefaultExpiration)
	return id, nil
}

// Get returns a copy of the session.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.SessionState, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return x.(*domain.SessionState).Clone(), nil
}

// Save replaces an existing session.
func (s *SessionStore) Save(_ context.Context, id string, state *domain.SessionState) error {
	if _, found := s.cache.Get(id); !found {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	s.cache.Set(id, state.Clone(), cache.DefaultExpiration)
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
