package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	ollamaembed "github.com/custodia-labs/zenji/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/custodia-labs/zenji/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/zenji/internal/adapters/driven/tokens"
	"github.com/custodia-labs/zenji/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantNil   bool
		wantModel string
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name:      "ollama provider creates service",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: "http://localhost:11434", Model: "nomic-embed-text"},
			wantModel: "nomic-embed-text",
		},
		{
			name:      "openai provider creates service",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "test-key", Model: "text-embedding-3-small"},
			wantModel: "text-embedding-3-small",
		},
		{
			name:      "gemini provider creates service",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderGemini, APIKey: "test-key", Model: "gemini-embedding-001"},
			wantModel: "gemini-embedding-001",
		},
		{name: "openai without key is not configured", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, wantNil: true},
		{name: "unknown provider is not configured", settings: &domain.EmbeddingSettings{Provider: "unknown", APIKey: "k"}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService_OllamaDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(context.Background(), &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "custom-model"})
	require.NoError(t, err)
	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateServices_OllamaPacing(t *testing.T) {
	emb, err := CreateEmbeddingService(context.Background(), &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, RequestsPerSecond: 2})
	require.NoError(t, err)
	require.IsType(t, &ollamaembed.EmbeddingService{}, emb)
	assert.Equal(t, rate.Limit(2), emb.(*ollamaembed.EmbeddingService).Limit())

	llm, err := CreateLLMService(context.Background(), &domain.LLMSettings{Provider: domain.AIProviderOllama, RequestsPerSecond: 5})
	require.NoError(t, err)
	require.IsType(t, &ollamallm.LLMService{}, llm)
	assert.Equal(t, rate.Limit(5), llm.(*ollamallm.LLMService).Limit())

	unpaced, err := CreateLLMService(context.Background(), &domain.LLMSettings{Provider: domain.AIProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, rate.Inf, unpaced.(*ollamallm.LLMService).Limit())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantModel string
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name:      "ollama provider creates service",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"},
			wantModel: "llama3.2",
		},
		{
			name:      "openai provider creates service",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-5-nano"},
			wantModel: "gpt-5-nano",
		},
		{
			name:      "gemini provider creates service",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderGemini, APIKey: "k", Model: "gemini-1.5-flash"},
			wantModel: "gemini-1.5-flash",
		},
		{name: "gemini without key is not configured", settings: &domain.LLMSettings{Provider: domain.AIProviderGemini}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestValidateConfig_Ollama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}))

	err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, err, domain.ErrExternalService)
	err = ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestValidateConfig_NotConfigured(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{}))
}

func TestInit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL, Model: "nomic-embed-text"}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1", Model: "llama3.2"}

	res, err := Init(context.Background(), &settings, true)
	require.NoError(t, err)
	defer res.Close()

	assert.NotNil(t, res.EmbeddingService)
	assert.NotNil(t, res.LLMService)
	assert.IsType(t, tokens.Approximate{}, res.TokenCounter)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "LLM service unreachable")
}

func TestInit_Unconfigured(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding.APIKey = ""
	settings.LLM.APIKey = ""

	res, err := Init(context.Background(), &settings, true)
	require.NoError(t, err)

	assert.Nil(t, res.EmbeddingService)
	assert.Nil(t, res.LLMService)
	assert.Len(t, res.Warnings, 2)

	quiet, err := Init(context.Background(), &settings, false)
	require.NoError(t, err)
	assert.Empty(t, quiet.Warnings)
}

func TestCreateTokenCounter(t *testing.T) {
	assert.IsType(t, tokens.Approximate{}, CreateTokenCounter(nil))
	assert.IsType(t, tokens.Approximate{}, CreateTokenCounter(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama}))
	assert.NotNil(t, CreateTokenCounter(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "not-a-model"}))
}
