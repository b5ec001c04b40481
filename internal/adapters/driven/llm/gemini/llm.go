// Package gemini provides an LLM service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultLLMModel is the default Gemini chat model.
const DefaultLLMModel = "gemini-1.5-flash"

// Gemini content roles.
const (
	roleUser  = "user"
	roleModel = "model"
)

// LLMConfig holds configuration for the Gemini LLM service.
type LLMConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the LLM model to use (default: gemini-1.5-flash).
	Model string

	// Endpoint overrides the API endpoint.
	Endpoint string
}

// LLMService provides chat completions using Gemini.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &LLMService{client: client, model: cfg.Model}, nil
}

// Complete runs a chat completion. System messages become the system
// instruction; a schema switches the response to JSON.
func (s *LLMService) Complete(ctx context.Context, messages []driven.ChatMessage, opts driven.CompleteOptions) (string, error) {
	system, history, last := split(messages)
	if last == "" {
		return "", fmt.Errorf("%w: no user message", domain.ErrInvalidInput)
	}

	m := s.client.GenerativeModel(s.model)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if opts.Temperature != nil {
		m.SetTemperature(float32(*opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if len(opts.Schema) > 0 {
		m.ResponseMIMEType = "application/json"
	}

	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %w", domain.ErrExternalService, err)
	}
	return responseText(resp), nil
}

// split separates system text, prior turns and the final user message.
func split(messages []driven.ChatMessage) (system string, history []*genai.Content, last string) {
	var systemParts []string
	var turns []driven.ChatMessage
	for _, msg := range messages {
		if msg.Role == driven.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}

	if n := len(turns); n > 0 && turns[n-1].Role == driven.RoleUser {
		last = turns[n-1].Content
		turns = turns[:n-1]
	}

	for _, msg := range turns {
		role := roleUser
		if msg.Role == driven.RoleAssistant {
			role = roleModel
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return strings.Join(systemParts, "\n\n"), history, last
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model info, which validates the key without generating anything.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("%w: gemini: ping failed: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Close releases the client connection.
func (s *LLMService) Close() error {
	return s.client.Close()
}
