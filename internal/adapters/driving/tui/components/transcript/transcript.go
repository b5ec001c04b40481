// Package transcript renders the scrolling conversation history.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/zenji/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/zenji/internal/core/domain"
)

// View is a viewport over the rendered turns. New turns scroll it to the bottom.
type View struct {
	viewport viewport.Model
	styles   *styles.Styles
	turns    []domain.Turn
	notice   string
}

// New creates an empty transcript.
func New(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		viewport: viewport.New(80, 20),
		styles:   s,
	}
}

// Update forwards scroll keys and mouse wheel events to the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the visible window.
func (v *View) View() string {
	return v.viewport.View()
}

// Append adds a turn and scrolls to it.
func (v *View) Append(role, content string) {
	v.turns = append(v.turns, domain.Turn{Role: role, Content: content})
	v.refresh()
}

// SetNotice shows a muted line below the last turn. An empty notice clears it.
func (v *View) SetNotice(notice string) {
	v.notice = notice
	v.refresh()
}

// Turns returns the turns shown so far.
func (v *View) Turns() []domain.Turn {
	return v.turns
}

// Reset clears the transcript.
func (v *View) Reset() {
	v.turns = nil
	v.notice = ""
	v.refresh()
}

// SetSize resizes the viewport and rewraps the content.
func (v *View) SetSize(width, height int) {
	if height < 1 {
		height = 1
	}
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

// ScrollUp moves up half a page.
func (v *View) ScrollUp() {
	v.viewport.HalfViewUp()
}

// ScrollDown moves down half a page.
func (v *View) ScrollDown() {
	v.viewport.HalfViewDown()
}

func (v *View) refresh() {
	v.viewport.SetContent(v.render())
	v.viewport.GotoBottom()
}

func (v *View) render() string {
	wrap := lipgloss.NewStyle().Width(max(v.viewport.Width-2, 10))

	var b strings.Builder
	for i, t := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := v.styles.BotLabel.Render("zenji")
		if t.Role == domain.RoleUser {
			label = v.styles.UserLabel.Render("you")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(wrap.Render(v.styles.Normal.Render(t.Content)))
	}
	if v.notice != "" {
		if len(v.turns) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Muted.Render(v.notice))
	}
	return b.String()
}
