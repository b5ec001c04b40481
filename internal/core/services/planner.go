package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Ensure DialogPlanner implements PromptStoreAware.
var _ driven.PromptStoreAware = (*DialogPlanner)(nil)

// plannerSchemaName names the structured output for providers that require one.
const plannerSchemaName = "dialog_action"

// DialogPlanner asks the completion oracle for the next DialogAction.
type DialogPlanner struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewDialogPlanner creates a planner over the given oracle.
func NewDialogPlanner(llm driven.LLMService) *DialogPlanner {
	return &DialogPlanner{llm: llm}
}

// SetPromptStore overrides the built-in planner system prompt.
func (p *DialogPlanner) SetPromptStore(store driven.PromptStore) {
	p.prompts = store
}

// Plan builds the bounded planner prompt from the state and the latest
// message, then parses and validates the oracle's reply. A reply that cannot
// be decoded or that violates the action constraints wraps ErrPlannerSchema.
func (p *DialogPlanner) Plan(ctx context.Context, state *domain.SessionState, message string) (*domain.DialogAction, error) {
	if p.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	msgs, err := p.messages(state, message)
	if err != nil {
		return nil, err
	}

	out, err := p.llm.Complete(ctx, msgs, driven.CompleteOptions{
		SchemaName: plannerSchemaName,
		Schema:     json.RawMessage(domain.DialogActionSchema),
	})
	if err != nil {
		return nil, fmt.Errorf("planner completion: %w", err)
	}

	action, err := parseAction(out)
	if err != nil {
		logger.Debug("Planner reply rejected: %v (raw=%q)", err, out)
		return nil, err
	}
	return action, nil
}

func (p *DialogPlanner) messages(state *domain.SessionState, message string) ([]driven.ChatMessage, error) {
	snapshot, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}

	msgs := make([]driven.ChatMessage, 0, 3+2*len(domain.PlannerExamples))
	msgs = append(msgs, driven.ChatMessage{
		Role:    driven.RoleSystem,
		Content: loadPrompt(p.prompts, driven.PromptPlannerSystem, domain.PlannerSystemPrompt),
	})
	for _, ex := range domain.PlannerExamples {
		msgs = append(msgs,
			driven.ChatMessage{Role: driven.RoleUser, Content: ex.User},
			driven.ChatMessage{Role: driven.RoleAssistant, Content: ex.Assistant},
		)
	}
	msgs = append(msgs,
		driven.ChatMessage{Role: driven.RoleUser, Content: "Session so far: " + string(snapshot)},
		driven.ChatMessage{Role: driven.RoleUser, Content: message},
	)
	return msgs, nil
}

// parseAction decodes the JSON object spanning the first '{' to the last '}'
// and validates it.
func parseAction(out string) (*domain.DialogAction, error) {
	raw, err := extractJSON(out)
	if err != nil {
		return nil, err
	}

	var action domain.DialogAction
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPlannerSchema, err)
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return &action, nil
}

var errNoJSONObject = errors.New("no JSON object in reply")

func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: %w", domain.ErrPlannerSchema, errNoJSONObject)
	}
	return s[start : end+1], nil
}
