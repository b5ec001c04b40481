// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/zenji/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/zenji/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/zenji/internal/adapters/driven/embedding/openai"
	geminillm "github.com/custodia-labs/zenji/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/zenji/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/zenji/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/zenji/internal/adapters/driven/tokens"
	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built for one process.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	TokenCounter     driven.TokenCounter
	Warnings         []string // Non-fatal issues, such as an unreachable provider.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init builds the embedding and completion services for settings.
// Construction failures are returned; an unreachable service is kept and
// reported as a warning so the first real request surfaces the error.
func Init(ctx context.Context, settings *domain.AppSettings, validate bool) (*InitResult, error) {
	res := &InitResult{}

	emb, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	res.EmbeddingService = emb

	llm, err := CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	res.LLMService = llm

	res.TokenCounter = CreateTokenCounter(&settings.Embedding)

	if validate {
		if emb == nil {
			res.Warnings = append(res.Warnings, "embedding provider not configured. Run 'zenji settings' to fix")
		} else if err := ping(ctx, emb); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("embedding service unreachable: %v", err))
		}
		if llm == nil {
			res.Warnings = append(res.Warnings, "LLM provider not configured. Run 'zenji settings' to fix")
		} else if err := ping(ctx, llm); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("LLM service unreachable: %v", err))
		}
	}

	return res, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, svc pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use in the settings commands to validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(context.Background(), settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	return ping(context.Background(), svc)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use in the settings commands to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(context.Background(), settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	return ping(context.Background(), svc)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        dimensions,
			RequestsPerSecond: float64(settings.RequestsPerSecond),
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: float64(settings.RequestsPerSecond),
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.LLMConfig{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateTokenCounter returns the counter used to budget embedding batches.
// OpenAI models count exactly; other providers use the approximation.
func CreateTokenCounter(settings *domain.EmbeddingSettings) driven.TokenCounter {
	if settings != nil && settings.Provider == domain.AIProviderOpenAI {
		return tokens.ForModel(settings.Model)
	}
	return tokens.Approximate{}
}
