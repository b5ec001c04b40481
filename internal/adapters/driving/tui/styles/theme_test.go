package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Accent))
	assert.NotEmpty(t, string(theme.User))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEqual(t, theme.Accent, theme.User)
}

func TestNewStyles_WithTheme(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)

	require.NotNil(t, s)
	assert.Same(t, theme, s.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.NotNil(t, s.Theme())
}

func TestStyles_LabelsAreBold(t *testing.T) {
	s := DefaultStyles()

	assert.True(t, s.UserLabel.GetBold())
	assert.True(t, s.BotLabel.GetBold())
	assert.True(t, s.Title.GetBold())
}

func TestStyles_CanRenderText(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Normal.Render("hello"), "hello")
	assert.Contains(t, s.Stage.Render("ask_goal"), "ask_goal")
}
