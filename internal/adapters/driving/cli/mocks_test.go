package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
)

type mockIngest struct {
	docResult    domain.IngestResult
	docErr       error
	folderResult domain.IngestResult
	folderErr    error
	gotName      string
	gotRaw       []byte
	gotFolder    string
}

var _ driving.IngestService = (*mockIngest)(nil)

func (m *mockIngest) IngestDocument(_ context.Context, raw []byte, filename string) (domain.IngestResult, error) {
	m.gotRaw, m.gotName = raw, filename
	return m.docResult, m.docErr
}

func (m *mockIngest) IngestFolder(_ context.Context, path string) (domain.IngestResult, error) {
	m.gotFolder = path
	return m.folderResult, m.folderErr
}

func (m *mockIngest) Supports(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf") || strings.HasSuffix(filename, ".txt")
}

type mockAsk struct {
	answer domain.Answer
	err    error
	got    domain.AskRequest
}

func (m *mockAsk) Ask(_ context.Context, req domain.AskRequest) (domain.Answer, error) {
	m.got = req
	return m.answer, m.err
}

type mockStats struct {
	stats domain.IndexStats
	err   error
}

func (m *mockStats) Stats(context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

type mockDialog struct {
	replies  []domain.TurnReply
	errs     []error
	state    *domain.SessionState
	stateErr error
	turns    []string
}

var _ driving.DialogService = (*mockDialog)(nil)

func (m *mockDialog) StartSession(context.Context) (domain.SessionStart, error) {
	return domain.SessionStart{SessionID: "sess-1", Greeting: domain.Greeting}, nil
}

func (m *mockDialog) SubmitTurn(_ context.Context, _ string, message string) (domain.TurnReply, error) {
	i := len(m.turns)
	m.turns = append(m.turns, message)
	if i < len(m.errs) && m.errs[i] != nil {
		return domain.TurnReply{}, m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return domain.TurnReply{Reply: "Tell me more.", Stage: domain.StageAskContext}, nil
}

func (m *mockDialog) GetSession(context.Context, string) (*domain.SessionState, error) {
	return m.state, m.stateErr
}

type mockWatcher struct {
	results []domain.IngestResult
}

func (m *mockWatcher) Watch(_ context.Context, _ string, onResult func(domain.IngestResult, error)) error {
	for _, r := range m.results {
		onResult(r, nil)
	}
	return nil
}

type mockSettings struct {
	settings domain.AppSettings
	set      map[string]any
	validErr error
}

var _ driving.SettingsService = (*mockSettings)(nil)

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings(), set: map[string]any{}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}
func (m *mockSettings) Save(s *domain.AppSettings) error { m.settings = *s; return nil }
func (m *mockSettings) Set(key string, value any) error {
	m.set[key] = value
	return nil
}
func (m *mockSettings) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}
func (m *mockSettings) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}
func (m *mockSettings) Validate() error                 { return m.validErr }
func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettings) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettings) ValidateLLMConfig() error        { return nil }

// testServices holds the fakes installed by setupTestServices.
type testServices struct {
	ingest   *mockIngest
	ask      *mockAsk
	stats    *mockStats
	dialog   *mockDialog
	watcher  *mockWatcher
	settings *mockSettings
}

// setupTestServices installs fakes as the driving ports and restores the
// previous ports and flag values when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	prevSettings, prevIngest, prevWatcher := settingsService, ingestService, folderWatcher
	prevDialog, prevAsk, prevStats := dialogService, askService, statsService

	ts := &testServices{
		ingest:   &mockIngest{},
		ask:      &mockAsk{},
		stats:    &mockStats{},
		dialog:   &mockDialog{},
		watcher:  &mockWatcher{},
		settings: newMockSettings(),
	}
	settingsService = ts.settings
	ingestService = ts.ingest
	folderWatcher = ts.watcher
	dialogService = ts.dialog
	askService = ts.ask
	statsService = ts.stats

	t.Cleanup(func() {
		settingsService, ingestService, folderWatcher = prevSettings, prevIngest, prevWatcher
		dialogService, askService, statsService = prevDialog, prevAsk, prevStats
		jsonOutput = false
		askK = 0
		askWhere = nil
		chatPlain = false
		serveAddr = ":8000"
	})
	return ts
}

// executeCommand runs rootCmd with args and stdin, returning everything written.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
