// Package status provides the chat status bar.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/zenji/internal/core/domain"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateEnded    State = "ended"
)

// Bar shows the dialog stage, activity and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	state   State
	stage   domain.Stage
	message string
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Stage

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateReady,
		width:   80,
	}
}

// Init starts nothing; the spinner ticks only while thinking.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while a turn is in flight.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && b.state == StateThinking {
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}
	return b, nil
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	stage := ""
	if b.stage != "" {
		stage = b.styles.Stage.Render(string(b.stage)) + " "
	}

	switch b.state {
	case StateThinking:
		return stage + b.spinner.View() + b.styles.Muted.Render(" thinking...")
	case StateError:
		if b.message != "" {
			return stage + b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return stage + b.styles.Error.Render("Error")
	case StateEnded:
		return stage + b.styles.Muted.Render("Conversation ended")
	case StateReady:
	}
	return stage + b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateEnded {
		bindings = b.keymap.EndedHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// StartThinking switches to the thinking state and returns the spinner's first tick.
func (b *Bar) StartThinking() tea.Cmd {
	b.state = StateThinking
	b.message = ""
	return b.spinner.Tick
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetStage sets the dialog stage shown on the left.
func (b *Bar) SetStage(stage domain.Stage) {
	b.stage = stage
}

// Stage returns the dialog stage shown.
func (b *Bar) Stage() domain.Stage {
	return b.stage
}

// SetError switches to the error state with a message.
func (b *Bar) SetError(message string) {
	b.state = StateError
	b.message = message
}

// Message returns the current error message.
func (b *Bar) Message() string {
	return b.message
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the bar width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the bar for a new session.
func (b *Bar) Clear() {
	b.state = StateReady
	b.stage = ""
	b.message = ""
}
