package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini).
	APIKey string

	// RequestsPerSecond paces calls to a local provider. Zero disables pacing.
	RequestsPerSecond int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini).
	APIKey string

	// RequestsPerSecond paces calls to a local provider. Zero disables pacing.
	RequestsPerSecond int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IngestSettings controls chunking and embedding batches.
type IngestSettings struct {
	// ChunkSize is the window length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters repeated between windows.
	ChunkOverlap int

	// MaxBatchTokens is the soft token ceiling per embedding request.
	MaxBatchTokens int

	// Extensions lists the file extensions picked up by folder ingestion.
	Extensions []string
}

// RetrievalSettings controls nearest-neighbour lookups.
type RetrievalSettings struct {
	// TopK is the default number of passages for ask.
	TopK int
}

// RecommendK returns the passage count used when composing recommendations.
func (r RetrievalSettings) RecommendK() int {
	return min(r.TopK*2, 12)
}

// VectorBackend selects the vector store implementation.
type VectorBackend string

// Vector store backends.
const (
	VectorBackendMemory   VectorBackend = "memory"
	VectorBackendSQLite   VectorBackend = "sqlite"
	VectorBackendPostgres VectorBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendSQLite, VectorBackendPostgres:
		return true
	default:
		return false
	}
}

// SessionBackend selects the session store implementation.
type SessionBackend string

// Session store backends.
const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendSQLite SessionBackend = "sqlite"
	SessionBackendRedis  SessionBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b SessionBackend) IsValid() bool {
	switch b {
	case SessionBackendMemory, SessionBackendSQLite, SessionBackendRedis:
		return true
	default:
		return false
	}
}

// StoreSettings selects and locates persistence backends.
type StoreSettings struct {
	VectorBackend  VectorBackend
	SessionBackend SessionBackend

	// Collection names the chunk collection (table name suffix, key prefix).
	Collection string

	// DataDir holds the sqlite database and prompt overrides.
	DataDir string

	// DatabaseURL is the postgres connection string.
	DatabaseURL string

	// RedisURL is the redis connection string.
	RedisURL string

	// SessionTTL expires idle sessions where the backend supports it.
	SessionTTL time.Duration
}

// LogSettings controls the process logger.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string

	// File, when set, receives a rotated JSON copy of every log line.
	File string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
	Store     StoreSettings
	Log       LogSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the environment or the config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Ingest: IngestSettings{
			ChunkSize:      1800,
			ChunkOverlap:   250,
			MaxBatchTokens: 250000,
			Extensions:     []string{".pdf"},
		},
		Retrieval: RetrievalSettings{
			TopK: 8,
		},
		Store: StoreSettings{
			VectorBackend:  VectorBackendSQLite,
			SessionBackend: SessionBackendMemory,
			Collection:     "flower_medicine",
			SessionTTL:     24 * time.Hour,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (s AppSettings) Validate() error {
	if s.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.Ingest.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative", ErrInvalidInput)
	}
	if s.Ingest.MaxBatchTokens <= 0 {
		return fmt.Errorf("%w: max batch tokens must be positive", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidInput)
	}
	if !s.Store.VectorBackend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrInvalidInput, s.Store.VectorBackend)
	}
	if !s.Store.SessionBackend.IsValid() {
		return fmt.Errorf("%w: unknown session backend %q", ErrInvalidInput, s.Store.SessionBackend)
	}
	if s.Store.VectorBackend == VectorBackendPostgres && s.Store.DatabaseURL == "" {
		return fmt.Errorf("%w: postgres backend requires a database url", ErrInvalidInput)
	}
	if s.Store.SessionBackend == SessionBackendRedis && s.Store.RedisURL == "" {
		return fmt.Errorf("%w: redis backend requires a redis url", ErrInvalidInput)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "gemini-embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-5-nano",
		AIProviderGemini: "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"gemini-embedding-001": 3072,
		"text-embedding-004":   768,
	}
}
