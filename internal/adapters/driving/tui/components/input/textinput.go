// Package input provides the chat message input.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/styles"
)

// CharLimit caps a single message.
const CharLimit = 1000

// ChatInput wraps a bubbles textinput for composing messages.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewChatInput creates a focused chat input.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Tell me how you feel..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = CharLimit
	ti.Width = 60

	return &ChatInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init starts the cursor blink.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key input.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the prompt label and input box.
func (c *ChatInput) View() string {
	label := c.styles.UserLabel.Render("you ")
	box := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

// Value returns the current text.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue replaces the current text.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focus gives the input focus.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus so typing is ignored while a turn runs.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused reports whether the input has focus.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the outer width.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	inner := width - 10
	if inner < 20 {
		inner = 20
	}
	c.textinput.Width = inner
}

// Width returns the outer width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the text.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
