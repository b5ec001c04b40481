package driven

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// SessionStore owns dialog session state keyed by session id.
// Get returns a copy; changes are visible to other callers only after Save.
type SessionStore interface {
	// Create stores a fresh session and returns its id.
	Create(ctx context.Context, state *domain.SessionState) (string, error)

	// Get returns the session or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.SessionState, error)

	// Save replaces the stored state of an existing session.
	Save(ctx context.Context, id string, state *domain.SessionState) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
