// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"encoding/json"
)

// LLMService is the completion oracle used for planning, recommendations and ask.
//
// Implementations may include:
//   - OpenAI (gpt-5-nano, gpt-4o-mini)
//   - Ollama (local models)
//   - Gemini (gemini-1.5-flash)
type LLMService interface {
	// Complete runs a chat completion over the messages and returns the text.
	// When opts.Schema is set, the provider is asked for JSON conforming to it;
	// validating the result remains the caller's job.
	Complete(ctx context.Context, messages []ChatMessage, opts CompleteOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompleteOptions configures a completion.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness. Nil leaves it to the provider,
	// since some models reject any non-default value.
	Temperature *float64

	// SchemaName names the structured output (required by some providers).
	SchemaName string

	// Schema is a JSON schema the output must conform to.
	Schema json.RawMessage
}

// Temperature returns a pointer for CompleteOptions.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
