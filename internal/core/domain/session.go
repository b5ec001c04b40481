package domain

import (
	"strings"
	"unicode/utf8"
)

// Stage is a dialog state machine state.
type Stage string

// Dialog stages.
const (
	StageAskFeelings Stage = "ask_feelings"
	StageAskContext  Stage = "ask_context"
	StageAskDuration Stage = "ask_duration"
	StageAskGoal     Stage = "ask_goal"
	StageConfirm     Stage = "confirm"
	StageRecommend   Stage = "recommend"
	StageEnd         Stage = "end"
)

// IsValid returns true if the stage is recognised.
func (s Stage) IsValid() bool {
	switch s {
	case StageAskFeelings, StageAskContext, StageAskDuration, StageAskGoal,
		StageConfirm, StageRecommend, StageEnd:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// AllStages returns every stage in typical progression order.
func AllStages() []Stage {
	return []Stage{
		StageAskFeelings, StageAskContext, StageAskDuration, StageAskGoal,
		StageConfirm, StageRecommend, StageEnd,
	}
}

// Duration classifies how long the user has felt this way.
type Duration string

// Allowed durations.
const (
	DurationAcute      Duration = "acute"
	DurationPersistent Duration = "persistent"
)

// IsValid returns true only for the two allowed literals.
func (d Duration) IsValid() bool {
	return d == DurationAcute || d == DurationPersistent
}

// Safety is the planner's risk assessment for a turn.
type Safety string

// Safety levels.
const (
	SafetyOK      Safety = "ok"
	SafetyCrisis  Safety = "crisis"
	SafetyMedical Safety = "medical"
)

// IsValid returns true if the safety level is recognised.
func (s Safety) IsValid() bool {
	switch s {
	case SafetyOK, SafetyCrisis, SafetyMedical:
		return true
	default:
		return false
	}
}

// Unsafe returns true when normal flow must stop.
func (s Safety) Unsafe() bool {
	return s == SafetyCrisis || s == SafetyMedical
}

// Slot is one intake field.
type Slot string

// Intake slots.
const (
	SlotFeelings Slot = "feelings"
	SlotContext  Slot = "context"
	SlotDuration Slot = "duration"
	SlotGoal     Slot = "goal"
)

// IsValid returns true if the slot is recognised.
func (s Slot) IsValid() bool {
	switch s {
	case SlotFeelings, SlotContext, SlotDuration, SlotGoal:
		return true
	default:
		return false
	}
}

// Slot limits.
const (
	MaxFeelings   = 6
	MaxContextLen = 140
	MaxGoalLen    = 80
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the conversation transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionState is the per-conversation intake record.
// It is mutated only by Merge and by appending turns.
type SessionState struct {
	Stage    Stage    `json:"stage"`
	Feelings []string `json:"feelings"`
	Context  string   `json:"context,omitempty"`
	Duration Duration `json:"duration,omitempty"`
	Goal     string   `json:"goal,omitempty"`
	Turns    []Turn   `json:"turns"`
}

// NewSessionState returns the state of a freshly created session.
func NewSessionState() *SessionState {
	return &SessionState{
		Stage:    StageAskFeelings,
		Feelings: []string{},
		Turns:    []Turn{},
	}
}

// Clone returns a deep copy so a turn can be applied atomically.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.Feelings = append(make([]string, 0, len(s.Feelings)), s.Feelings...)
	c.Turns = append(make([]Turn, 0, len(s.Turns)), s.Turns...)
	return &c
}

// AddTurn appends a message to the transcript.
func (s *SessionState) AddTurn(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
}

// Merge folds a validated planner action into the state.
//
// Stage is always overwritten. Feelings are case-folded, trimmed and unioned
// with existing ones, keeping first-seen order, capped at MaxFeelings.
// Context and goal are replaced only by non-empty values and truncated.
// Duration is replaced only by an allowed literal.
func (s *SessionState) Merge(a *DialogAction) {
	s.Stage = a.Stage

	if len(a.Feelings) > 0 {
		s.Feelings = mergeFeelings(s.Feelings, a.Feelings)
	}

	if c := truncate(strings.TrimSpace(a.Context), MaxContextLen); c != "" {
		s.Context = c
	}

	if a.Duration.IsValid() {
		s.Duration = a.Duration
	}

	if g := truncate(strings.TrimSpace(a.Goal), MaxGoalLen); g != "" {
		s.Goal = g
	}
}

func mergeFeelings(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, MaxFeelings)
	add := func(w string) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || len(out) >= MaxFeelings {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	for _, w := range existing {
		add(w)
	}
	for _, w := range incoming {
		add(w)
	}
	return out
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
