// Package tui provides the interactive chat interface for the intake dialog.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/zenji/internal/core/domain"
)

// chromeHeight is the rows taken by the title, input box and status bar.
const chromeHeight = 6

// App is the chat TUI following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	transcript *transcript.View
	input      *input.ChatInput
	bar        *status.Bar

	sessionID string
	stage     domain.Stage

	// busy is true while a StartSession or SubmitTurn call is in flight.
	busy bool
	err  error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the chat application.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		transcript: transcript.New(s),
		input:      input.NewChatInput(s),
		bar:        status.NewBar(s, km),
	}, nil
}

// WithContext sets the context passed to the dialog service.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init opens a session and starts the cursor blink.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("zenji"),
		a.input.Init(),
		a.startSession(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.SessionStarted:
		a.busy = false
		if msg.Err != nil {
			a.err = msg.Err
			a.bar.SetError(msg.Err.Error())
			return a, nil
		}
		a.err = nil
		a.sessionID = msg.Start.SessionID
		a.setStage(domain.StageAskFeelings)
		a.transcript.Append(domain.RoleAssistant, msg.Start.Greeting)
		a.bar.SetState(status.StateReady)
		return a, a.input.Focus()

	case messages.TurnSubmitted:
		a.transcript.Append(domain.RoleUser, msg.Message)
		a.transcript.SetNotice("")
		return a, a.submitTurn(msg.Message)

	case messages.TurnCompleted:
		a.busy = false
		if msg.Err != nil {
			// The stored session is unchanged, so the user can simply retry.
			a.err = msg.Err
			a.bar.SetError(msg.Err.Error())
			a.transcript.SetNotice("That message was not saved. Please try again.")
			return a, a.input.Focus()
		}
		a.err = nil
		a.transcript.Append(domain.RoleAssistant, msg.Reply.Reply)
		a.setStage(msg.Reply.Stage)
		if msg.Reply.Stage == domain.StageEnd {
			a.bar.SetState(status.StateEnded)
			a.transcript.SetNotice("Press ctrl+n to start a new session.")
			a.input.Blur()
			return a, nil
		}
		a.bar.SetState(status.StateReady)
		return a, a.input.Focus()

	case messages.Quit:
		return a, tea.Quit
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.bar, cmd = a.bar.Update(msg)
	cmds = append(cmds, cmd)
	a.transcript, cmd = a.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.NewSession):
		if a.busy {
			return a, nil
		}
		a.sessionID = ""
		a.transcript.Reset()
		a.bar.Clear()
		a.input.Reset()
		return a, a.startSession()

	case keymap.Matches(k, a.keymap.ScrollUp):
		a.transcript.ScrollUp()
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollDown):
		a.transcript.ScrollDown()
		return a, nil

	case keymap.Matches(k, a.keymap.Send):
		text := strings.TrimSpace(a.input.Value())
		if text == "" || a.busy || a.sessionID == "" || a.stage == domain.StageEnd {
			return a, nil
		}
		a.input.Reset()
		return a, func() tea.Msg { return messages.TurnSubmitted{Message: text} }
	}

	if a.busy || a.stage == domain.StageEnd {
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) startSession() tea.Cmd {
	a.busy = true
	ctx := a.ctx
	dialog := a.ports.Dialog
	return tea.Batch(a.bar.StartThinking(), func() tea.Msg {
		start, err := dialog.StartSession(ctx)
		return messages.SessionStarted{Start: start, Err: err}
	})
}

func (a *App) submitTurn(message string) tea.Cmd {
	a.busy = true
	a.input.Blur()
	ctx := a.ctx
	dialog := a.ports.Dialog
	id := a.sessionID
	return tea.Batch(a.bar.StartThinking(), func() tea.Msg {
		reply, err := dialog.SubmitTurn(ctx, id, message)
		return messages.TurnCompleted{Reply: reply, Err: err}
	})
}

func (a *App) setStage(stage domain.Stage) {
	a.stage = stage
	a.bar.SetStage(stage)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("zenji") + a.styles.Muted.Render("  flower essence intake")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.transcript.View(),
		a.input.View(),
		a.bar.View(),
	)
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// SessionID returns the current session id, empty before the first session opens.
func (a *App) SessionID() string {
	return a.sessionID
}

// Stage returns the last stage reported by the dialog service.
func (a *App) Stage() domain.Stage {
	return a.stage
}

// Busy reports whether a dialog call is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// Turns returns the conversation shown so far.
func (a *App) Turns() []domain.Turn {
	return a.transcript.Turns()
}

// SetDimensions lays out all components for the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.transcript.SetSize(width, height-chromeHeight)
	a.input.SetWidth(width)
	a.bar.SetWidth(width)
}
