package rest

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

type mockIngest struct {
	lastRaw    []byte
	lastName   string
	lastFolder string
	result     domain.IngestResult
	err        error
}

func (m *mockIngest) IngestDocument(_ context.Context, raw []byte, filename string) (domain.IngestResult, error) {
	m.lastRaw, m.lastName = raw, filename
	return m.result, m.err
}

func (m *mockIngest) IngestFolder(_ context.Context, path string) (domain.IngestResult, error) {
	m.lastFolder = path
	return m.result, m.err
}

func (m *mockIngest) Supports(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

type mockAsk struct {
	last   domain.AskRequest
	answer domain.Answer
	err    error
}

func (m *mockAsk) Ask(_ context.Context, req domain.AskRequest) (domain.Answer, error) {
	m.last = req
	return m.answer, m.err
}

type mockDialog struct {
	sessions map[string]*domain.SessionState
	reply    domain.TurnReply
	err      error
	lastMsg  string
}

func (m *mockDialog) StartSession(_ context.Context) (domain.SessionStart, error) {
	if m.err != nil {
		return domain.SessionStart{}, m.err
	}
	return domain.SessionStart{SessionID: "s-1", Greeting: "Hi"}, nil
}

func (m *mockDialog) SubmitTurn(_ context.Context, id, message string) (domain.TurnReply, error) {
	m.lastMsg = message
	if _, ok := m.sessions[id]; !ok {
		return domain.TurnReply{}, domain.ErrInvalidSession
	}
	return m.reply, m.err
}

func (m *mockDialog) GetSession(_ context.Context, id string) (*domain.SessionState, error) {
	state, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state, nil
}

type mockStats struct {
	stats domain.IndexStats
	err   error
}

func (m *mockStats) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

type fixture struct {
	ingest *mockIngest
	ask    *mockAsk
	dialog *mockDialog
	stats  *mockStats
	server *Server
}

func newFixture() *fixture {
	f := &fixture{
		ingest: &mockIngest{result: domain.IngestResult{File: "bach.pdf", Accepted: 3, StatusCode: http.StatusOK}},
		ask:    &mockAsk{},
		dialog: &mockDialog{sessions: map[string]*domain.SessionState{"s-1": domain.NewSessionState()}},
		stats:  &mockStats{},
	}
	server, err := NewServer(&Ports{Ingest: f.ingest, Ask: f.ask, Dialog: f.dialog, Stats: f.stats})
	if err != nil {
		panic(err)
	}
	f.server = server
	return f
}
