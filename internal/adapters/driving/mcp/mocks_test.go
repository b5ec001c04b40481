package mcp

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

type mockAskService struct {
	answer domain.Answer
	err    error
	last   domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (domain.Answer, error) {
	m.last = req
	return m.answer, m.err
}

type mockIngestService struct {
	result domain.IngestResult
	err    error
	path   string
}

func (m *mockIngestService) IngestDocument(_ context.Context, _ []byte, _ string) (domain.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestService) IngestFolder(_ context.Context, path string) (domain.IngestResult, error) {
	m.path = path
	return m.result, m.err
}

func (m *mockIngestService) Supports(_ string) bool {
	return true
}

type mockDialogService struct {
	sessions map[string]*domain.SessionState
	reply    domain.TurnReply
	err      error
}

func (m *mockDialogService) StartSession(_ context.Context) (domain.SessionStart, error) {
	if m.err != nil {
		return domain.SessionStart{}, m.err
	}
	return domain.SessionStart{SessionID: "s-1", Greeting: domain.Greeting}, nil
}

func (m *mockDialogService) SubmitTurn(_ context.Context, _, _ string) (domain.TurnReply, error) {
	return m.reply, m.err
}

func (m *mockDialogService) GetSession(_ context.Context, id string) (*domain.SessionState, error) {
	state, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state, nil
}

type mockStatsService struct {
	stats domain.IndexStats
	err   error
}

func (m *mockStatsService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}
