package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

func TestNewBar_NilArgs(t *testing.T) {
	b := NewBar(nil, nil)

	require.NotNil(t, b)
	assert.Equal(t, StateReady, b.State())
	assert.Equal(t, 80, b.Width())
	assert.Nil(t, b.Init())
}

func TestBar_View_Ready(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetStage(domain.StageAskFeelings)

	view := b.View()
	assert.Contains(t, view, "ask_feelings")
	assert.Contains(t, view, "Ready")
	assert.Contains(t, view, "send")
}

func TestBar_StartThinking(t *testing.T) {
	b := NewBar(nil, nil)

	cmd := b.StartThinking()

	assert.NotNil(t, cmd)
	assert.Equal(t, StateThinking, b.State())
	assert.Contains(t, b.View(), "thinking")
}

func TestBar_Update_TicksOnlyWhileThinking(t *testing.T) {
	b := NewBar(nil, nil)

	_, cmd := b.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)

	b.StartThinking()
	_, cmd = b.Update(b.spinner.Tick())
	assert.NotNil(t, cmd)
}

func TestBar_SetError(t *testing.T) {
	b := NewBar(nil, nil)

	b.SetError("planner unavailable")

	assert.Equal(t, StateError, b.State())
	assert.Equal(t, "planner unavailable", b.Message())
	assert.Contains(t, b.View(), "Error: planner unavailable")
}

func TestBar_Ended_ShowsEndedHelp(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	b.SetState(StateEnded)

	view := b.View()
	assert.Contains(t, view, "Conversation ended")
	assert.Contains(t, view, "new session")
	assert.NotContains(t, view, "send")
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetStage(domain.StageConfirm)
	b.SetError("boom")

	b.Clear()

	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Stage())
	assert.Empty(t, b.Message())
}
