package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

func TestDialogPlanner_PromptLayout(t *testing.T) {
	llm := &mockLLM{replies: []string{`{"stage":"ask_context","needed_slots":["context"],"safety":"ok"}`}}
	planner := NewDialogPlanner(llm)

	state := domain.NewSessionState()
	state.Feelings = []string{"anxious"}
	state.AddTurn(domain.RoleUser, "I feel anxious")

	_, err := planner.Plan(context.Background(), state, "I feel anxious")
	require.NoError(t, err)

	require.Len(t, llm.requests, 1)
	msgs := llm.requests[0]
	require.Len(t, msgs, 1+2*len(domain.PlannerExamples)+2)

	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Equal(t, domain.PlannerSystemPrompt, msgs[0].Content)
	for i, ex := range domain.PlannerExamples {
		assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: ex.User}, msgs[1+2*i])
		assert.Equal(t, driven.ChatMessage{Role: driven.RoleAssistant, Content: ex.Assistant}, msgs[2+2*i])
	}

	snapshot := msgs[len(msgs)-2]
	assert.Equal(t, driven.RoleUser, snapshot.Role)
	require.Contains(t, snapshot.Content, "Session so far: ")
	var decoded domain.SessionState
	require.NoError(t, json.Unmarshal([]byte(snapshot.Content[len("Session so far: "):]), &decoded))
	assert.Equal(t, []string{"anxious"}, decoded.Feelings)

	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "I feel anxious"}, msgs[len(msgs)-1])

	opts := llm.options[0]
	assert.Equal(t, "dialog_action", opts.SchemaName)
	assert.JSONEq(t, domain.DialogActionSchema, string(opts.Schema))
}

func TestDialogPlanner_ExamplesAreValidActions(t *testing.T) {
	for _, ex := range domain.PlannerExamples {
		_, err := parseAction(ex.Assistant)
		assert.NoError(t, err, ex.User)
	}
}

func TestDialogPlanner_PromptOverride(t *testing.T) {
	llm := &mockLLM{replies: []string{`{"stage":"confirm","needed_slots":[],"safety":"ok"}`}}
	planner := NewDialogPlanner(llm)
	planner.SetPromptStore(stubPrompts{driven.PromptPlannerSystem: "custom planner"})

	_, err := planner.Plan(context.Background(), domain.NewSessionState(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "custom planner", llm.requests[0][0].Content)
}

func TestDialogPlanner_ParsesFencedReply(t *testing.T) {
	reply := "Here you go:\n```json\n{\"stage\":\"recommend\",\"summary\":\"anxious; exams\",\"needed_slots\":[],\"safety\":\"ok\"}\n```"
	planner := NewDialogPlanner(&mockLLM{replies: []string{reply}})

	action, err := planner.Plan(context.Background(), domain.NewSessionState(), "yes")

	require.NoError(t, err)
	assert.Equal(t, domain.StageRecommend, action.Stage)
	assert.Equal(t, "anxious; exams", action.Summary)
}

func TestDialogPlanner_DefaultsSafety(t *testing.T) {
	planner := NewDialogPlanner(&mockLLM{replies: []string{`{"stage":"ask_feelings","needed_slots":["feelings"]}`}})

	action, err := planner.Plan(context.Background(), domain.NewSessionState(), "hi")

	require.NoError(t, err)
	assert.Equal(t, domain.SafetyOK, action.Safety)
}

func TestDialogPlanner_RejectsInvalidReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json", "I am not sure what to say."},
		{"truncated", `{"stage":"confirm"`},
		{"unknown stage", `{"stage":"diagnose","needed_slots":[],"safety":"ok"}`},
		{"unknown safety", `{"stage":"confirm","needed_slots":[],"safety":"maybe"}`},
		{"unknown slot", `{"stage":"confirm","needed_slots":["mood"],"safety":"ok"}`},
		{"too many feelings", `{"stage":"confirm","needed_slots":[],"safety":"ok","feelings":["a","b","c","d","e","f","g"]}`},
		{"bad duration", `{"stage":"confirm","needed_slots":[],"safety":"ok","duration":"forever"}`},
		{"wrong type", `{"stage":"confirm","needed_slots":"context","safety":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := NewDialogPlanner(&mockLLM{replies: []string{tt.reply}})

			action, err := planner.Plan(context.Background(), domain.NewSessionState(), "hi")

			assert.Nil(t, action)
			assert.ErrorIs(t, err, domain.ErrPlannerSchema)
		})
	}
}

func TestDialogPlanner_OracleFailure(t *testing.T) {
	boom := errors.New("connection reset")
	planner := NewDialogPlanner(&mockLLM{err: boom})

	_, err := planner.Plan(context.Background(), domain.NewSessionState(), "hi")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrPlannerSchema)
}

func TestDialogPlanner_NoLLM(t *testing.T) {
	_, err := NewDialogPlanner(nil).Plan(context.Background(), domain.NewSessionState(), "hi")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestExtractJSON(t *testing.T) {
	got, err := extractJSON(`noise {"a": {"b": 1}} trailing`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, err = extractJSON("} backwards {")
	assert.ErrorIs(t, err, domain.ErrPlannerSchema)
}
