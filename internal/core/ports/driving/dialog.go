package driving

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// DialogService conducts guided intake conversations.
type DialogService interface {
	// StartSession creates a session and returns its id with the greeting.
	StartSession(ctx context.Context) (domain.SessionStart, error)

	// SubmitTurn applies one user message. The turn is all-or-nothing:
	// on error the stored session is unchanged.
	SubmitTurn(ctx context.Context, sessionID, message string) (domain.TurnReply, error)

	// GetSession returns the current state of a session.
	GetSession(ctx context.Context, sessionID string) (*domain.SessionState, error)
}
