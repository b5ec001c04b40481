package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
)

// MockDialogService implements driving.DialogService for testing.
type MockDialogService struct {
	mu sync.Mutex

	StartFunc  func(ctx context.Context) (domain.SessionStart, error)
	SubmitFunc func(ctx context.Context, sessionID, message string) (domain.TurnReply, error)

	Submitted []string
}

var _ driving.DialogService = (*MockDialogService)(nil)

func (m *MockDialogService) StartSession(ctx context.Context) (domain.SessionStart, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return domain.SessionStart{SessionID: "sess-1", Greeting: domain.Greeting}, nil
}

func (m *MockDialogService) SubmitTurn(ctx context.Context, sessionID, message string) (domain.TurnReply, error) {
	m.mu.Lock()
	m.Submitted = append(m.Submitted, sessionID+":"+message)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, sessionID, message)
	}
	return domain.TurnReply{Reply: "What is going on around this?", Stage: domain.StageAskContext}, nil
}

func (m *MockDialogService) GetSession(_ context.Context, _ string) (*domain.SessionState, error) {
	return domain.NewSessionState(), nil
}
