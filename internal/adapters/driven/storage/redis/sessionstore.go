// Package redis provides a go-redis session store for deployments that run
// more than one zenji process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "zenji:session:"

// SessionStore keeps each session as a JSON string key with an idle TTL.
type SessionStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewClient builds a client from a redis:// URL, falling back to treating
// the value as a bare host:port address.
func NewClient(url string) *goredis.Client {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		opt = &goredis.Options{Addr: url}
	}
	return goredis.NewClient(opt)
}

// NewSessionStore creates a session store on client. A ttl of zero keeps
// sessions until deleted.
func NewSessionStore(client goredis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

// Ping checks that redis is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Create stores state under a new id.
func (s *SessionStore) Create(ctx context.Context, state *domain.SessionState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshalling session: %w", err)
	}

	id := uuid.NewString()
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: storing session: %w", domain.ErrExternalService, err)
	}
	return id, nil
}

// Get returns the session or domain.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.SessionState, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading session: %w", domain.ErrExternalService, err)
	}
	return decode(data)
}

// Save replaces an existing session and refreshes its TTL. The existence
// check and the write are one SET XX command.
func (s *SessionStore) Save(ctx context.Context, id string, state *domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}

	err = s.client.SetArgs(ctx, s.key(id), data, goredis.SetArgs{Mode: "XX", TTL: s.ttl}).Err()
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: storing session: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: deleting session: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}

func decode(data []byte) (*domain.SessionState, error) {
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
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
