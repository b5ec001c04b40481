package domain

import (
	"fmt"
)

// Fixed assistant texts.
const (
	Greeting = "Hi—how can I help today? In a few words, how do you feel?"

	SafetyMessage = "I'm concerned by what you shared. I can't provide recommendations in potential crisis situations. " +
		"Please consider reaching out to a trusted person or local professional support. " +
		"If you're in immediate danger, contact local emergency services."

	FallbackQuestion     = "Could you tell me a bit more?"
	FallbackConfirmation = "Shall I suggest a few essences?"
	FallbackSummary      = "feelings and context as discussed"
	FallbackOpener       = "How are you feeling right now?"
)

// DialogAction is the planner's structured proposal for one turn.
// It is validated on arrival and only its fields are merged into SessionState.
type DialogAction struct {
	Stage        Stage    `json:"stage"`
	NextQuestion string   `json:"next_question,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	NeededSlots  []Slot   `json:"needed_slots"`
	Safety       Safety   `json:"safety"`
	Feelings     []string `json:"feelings,omitempty"`
	Context      string   `json:"context,omitempty"`
	Duration     Duration `json:"duration,omitempty"`
	Goal         string   `json:"goal,omitempty"`

	// RecommendationText is used verbatim when present on recommend or end.
	RecommendationText string `json:"recommendation_text,omitempty"`
}

// Validate checks the action against the enum, size and subset constraints.
// A missing safety defaults to ok. Any violation wraps ErrPlannerSchema.
func (a *DialogAction) Validate() error {
	if a.Safety == "" {
		a.Safety = SafetyOK
	}
	if !a.Stage.IsValid() {
		return fmt.Errorf("%w: unknown stage %q", ErrPlannerSchema, a.Stage)
	}
	if !a.Safety.IsValid() {
		return fmt.Errorf("%w: unknown safety %q", ErrPlannerSchema, a.Safety)
	}
	for _, s := range a.NeededSlots {
		if !s.IsValid() {
			return fmt.Errorf("%w: unknown slot %q", ErrPlannerSchema, s)
		}
	}
	if len(a.Feelings) > MaxFeelings {
		return fmt.Errorf("%w: %d feelings exceeds %d", ErrPlannerSchema, len(a.Feelings), MaxFeelings)
	}
	if a.Duration != "" && !a.Duration.IsValid() {
		return fmt.Errorf("%w: unknown duration %q", ErrPlannerSchema, a.Duration)
	}
	return nil
}

// DialogActionSchema is the JSON schema the completion oracle must satisfy
// when planning a turn.
const DialogActionSchema = `{
  "type": "object",
  "properties": {
    "stage": {"type": "string", "enum": ["ask_feelings", "ask_context", "ask_duration", "ask_goal", "confirm", "recommend", "end"]},
    "next_question": {"type": ["string", "null"]},
    "summary": {"type": ["string", "null"]},
    "needed_slots": {"type": "array", "items": {"type": "string", "enum": ["feelings", "context", "duration", "goal"]}},
    "safety": {"type": "string", "enum": ["ok", "crisis", "medical"]},
    "feelings": {"type": ["array", "null"], "items": {"type": "string"}, "maxItems": 6},
    "context": {"type": ["string", "null"]},
    "duration": {"type": ["string", "null"], "enum": ["acute", "persistent", null]},
    "goal": {"type": ["string", "null"]},
    "recommendation_text": {"type": ["string", "null"]}
  },
  "required": ["stage", "needed_slots", "safety"],
  "additionalProperties": false
}`

// SessionStart is returned when a conversation begins.
type SessionStart struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"message"`
}

// TurnReply is the assistant's answer to one user turn.
type TurnReply struct {
	Reply string `json:"reply"`
	Stage Stage  `json:"stage"`
}
