package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMRPS         = "llm.requests_per_second"
	keyChunkSize      = "ingest.chunk_size"
	keyChunkOverlap   = "ingest.chunk_overlap"
	keyMaxBatchTokens = "ingest.max_batch_tokens"
	keyExtensions     = "ingest.extensions"
	keyTopK           = "retrieval.top_k"
	keyVectorBackend  = "store.vector_backend"
	keySessionBackend = "store.session_backend"
	keyCollection     = "store.collection"
	keyDataDir        = "store.data_dir"
	keyDatabaseURL    = "store.database_url"
	keyRedisURL       = "store.redis_url"
	keySessionTTL     = "store.session_ttl"
	keyLogLevel       = "log.level"
	keyLogFile        = "log.file"
)

const defaultOllamaHost = "http://localhost:11434"

// Environment variables overriding the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	envOllamaHost   = "OLLAMA_HOST"
	envOllamaRPS    = "OLLAMA_REQUESTS_PER_SECOND"
	envOpenAIKey    = "OPENAI_API_KEY"
	envGeminiKey    = "GEMINI_API_KEY"
	envOpenAIEmbed  = "OPENAI_EMBED_MODEL"
	envOpenAIChat   = "OPENAI_CHAT_MODEL"
	envChunkChars   = "CHUNK_CHARS"
	envChunkOverlap = "CHUNK_OVERLAP"
	envTopK         = "TOP_K"
	envCollection   = "COLLECTION_NAME"
	envDataDir      = "ZENJI_DATA_DIR"
	envLogLevel     = "LOG_LEVEL"
	envDatabaseURL  = "DATABASE_URL"
	envRedisURL     = "REDIS_URL"
)

const (
	settingKindString  = "string"
	settingKindInt     = "int"
	settingKindList    = "list"
	settingKindDur     = "duration"
	settingKindProv    = "provider"
	settingKindVector  = "vector_backend"
	settingKindSession = "session_backend"
)

// settingKinds lists every key Set accepts and how its value is parsed.
var settingKinds = map[string]string{
	keyEmbedProvider:  settingKindProv,
	keyEmbedModel:     settingKindString,
	keyEmbedBaseURL:   settingKindString,
	keyEmbedAPIKey:    settingKindString,
	keyEmbedRPS:       settingKindInt,
	keyLLMProvider:    settingKindProv,
	keyLLMModel:       settingKindString,
	keyLLMBaseURL:     settingKindString,
	keyLLMAPIKey:      settingKindString,
	keyLLMRPS:         settingKindInt,
	keyChunkSize:      settingKindInt,
	keyChunkOverlap:   settingKindInt,
	keyMaxBatchTokens: settingKindInt,
	keyExtensions:     settingKindList,
	keyTopK:           settingKindInt,
	keyVectorBackend:  settingKindVector,
	keySessionBackend: settingKindSession,
	keyCollection:     settingKindString,
	keyDataDir:        settingKindString,
	keyDatabaseURL:    settingKindString,
	keyRedisURL:       settingKindString,
	keySessionTTL:     settingKindDur,
	keyLogLevel:       settingKindString,
	keyLogFile:        settingKindString,
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService resolves application settings.
// Resolution order is defaults, then the config store, then the environment.
// Flags are applied by the caller on the returned value.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup, mainly for tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get resolves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.fromStore()
	s.applyEnv(settings)
	return settings, nil
}

func (s *SettingsService) fromStore() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),

			RequestsPerSecond: s.getNonNegative(keyEmbedRPS, 0),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),

			RequestsPerSecond: s.getNonNegative(keyLLMRPS, 0),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:      s.getInt(keyChunkSize, defaults.Ingest.ChunkSize),
			ChunkOverlap:   s.getNonNegative(keyChunkOverlap, defaults.Ingest.ChunkOverlap),
			MaxBatchTokens: s.getInt(keyMaxBatchTokens, defaults.Ingest.MaxBatchTokens),
			Extensions:     s.getStrings(keyExtensions, defaults.Ingest.Extensions),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, defaults.Retrieval.TopK),
		},
		Store: domain.StoreSettings{
			VectorBackend:  domain.VectorBackend(s.getString(keyVectorBackend, string(defaults.Store.VectorBackend))),
			SessionBackend: domain.SessionBackend(s.getString(keySessionBackend, string(defaults.Store.SessionBackend))),
			Collection:     s.getString(keyCollection, defaults.Store.Collection),
			DataDir:        s.getString(keyDataDir, defaults.Store.DataDir),
			DatabaseURL:    s.configStore.GetString(keyDatabaseURL),
			RedisURL:       s.configStore.GetString(keyRedisURL),
			SessionTTL:     s.getDuration(keySessionTTL, defaults.Store.SessionTTL),
		},
		Log: domain.LogSettings{
			Level: s.getString(keyLogLevel, defaults.Log.Level),
			File:  s.configStore.GetString(keyLogFile),
		},
	}

	// Model defaults follow the provider, not the default provider.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaHost
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaHost
	}

	return settings
}

// applyEnv overlays environment variables. API keys from the environment
// only fill keys the config file left empty.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	env := func(name string) string {
		if s.lookupEnv == nil {
			return ""
		}
		v, _ := s.lookupEnv(name)
		return strings.TrimSpace(v)
	}
	envInt := func(name string, target *int) {
		if n, err := strconv.Atoi(env(name)); err == nil {
			*target = n
		}
	}

	apiKeys := map[domain.AIProvider]string{
		domain.AIProviderOpenAI: env(envOpenAIKey),
		domain.AIProviderGemini: env(envGeminiKey),
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = apiKeys[settings.Embedding.Provider]
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = apiKeys[settings.LLM.Provider]
	}

	if v := env(envOpenAIEmbed); v != "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.Model = v
	}
	if v := env(envOpenAIChat); v != "" && settings.LLM.Provider == domain.AIProviderOpenAI {
		settings.LLM.Model = v
	}
	if v := env(envOllamaHost); v != "" {
		if settings.Embedding.Provider.IsLocal() {
			settings.Embedding.BaseURL = v
		}
		if settings.LLM.Provider.IsLocal() {
			settings.LLM.BaseURL = v
		}
	}
	if n, err := strconv.Atoi(env(envOllamaRPS)); err == nil && n >= 0 {
		if settings.Embedding.Provider.IsLocal() {
			settings.Embedding.RequestsPerSecond = n
		}
		if settings.LLM.Provider.IsLocal() {
			settings.LLM.RequestsPerSecond = n
		}
	}

	envInt(envChunkChars, &settings.Ingest.ChunkSize)
	envInt(envChunkOverlap, &settings.Ingest.ChunkOverlap)
	envInt(envTopK, &settings.Retrieval.TopK)

	if v := env(envCollection); v != "" {
		settings.Store.Collection = v
	}
	if v := env(envDataDir); v != "" {
		settings.Store.DataDir = v
	}
	if v := env(envDatabaseURL); v != "" {
		settings.Store.DatabaseURL = v
	}
	if v := env(envRedisURL); v != "" {
		settings.Store.RedisURL = v
	}
	if v := env(envLogLevel); v != "" {
		settings.Log.Level = strings.ToLower(v)
	}
}

// Save persists application settings. Empty API keys are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond, settings.Embedding.RequestsPerSecond == 0},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMRPS, settings.LLM.RequestsPerSecond, settings.LLM.RequestsPerSecond == 0},
		{keyChunkSize, settings.Ingest.ChunkSize, false},
		{keyChunkOverlap, settings.Ingest.ChunkOverlap, false},
		{keyMaxBatchTokens, settings.Ingest.MaxBatchTokens, false},
		{keyExtensions, settings.Ingest.Extensions, false},
		{keyTopK, settings.Retrieval.TopK, false},
		{keyVectorBackend, string(settings.Store.VectorBackend), false},
		{keySessionBackend, string(settings.Store.SessionBackend), false},
		{keyCollection, settings.Store.Collection, false},
		{keyDataDir, settings.Store.DataDir, settings.Store.DataDir == ""},
		{keyDatabaseURL, settings.Store.DatabaseURL, settings.Store.DatabaseURL == ""},
		{keyRedisURL, settings.Store.RedisURL, settings.Store.RedisURL == ""},
		{keySessionTTL, settings.Store.SessionTTL.String(), false},
		{keyLogLevel, settings.Log.Level, false},
		{keyLogFile, settings.Log.File, settings.Log.File == ""},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses and stores a single key. Strings are converted to the key's type.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseSetting(kind string, value any) (any, error) {
	str, isString := value.(string)
	if !isString {
		return value, nil
	}
	str = strings.TrimSpace(str)

	switch kind {
	case settingKindInt:
		n, err := strconv.Atoi(str)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", str)
		}
		return n, nil
	case settingKindList:
		var items []string
		for _, part := range strings.Split(str, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	case settingKindDur:
		if _, err := time.ParseDuration(str); err != nil {
			return nil, fmt.Errorf("%q is not a duration", str)
		}
		return str, nil
	case settingKindProv:
		if !domain.AIProvider(str).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", str)
		}
		return str, nil
	case settingKindVector:
		if !domain.VectorBackend(str).IsValid() {
			return nil, fmt.Errorf("unknown vector backend %q", str)
		}
		return str, nil
	case settingKindSession:
		if !domain.SessionBackend(str).IsValid() {
			return nil, fmt.Errorf("unknown session backend %q", str)
		}
		return str, nil
	default:
		return str, nil
	}
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings := s.fromStore()
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = firstNonEmpty(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = providerBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings := s.fromStore()
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = firstNonEmpty(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = providerBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// providerBaseURL keeps a custom local endpoint and clears it for cloud providers.
func providerBaseURL(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaHost
	}
	return current
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	if s.lookupEnv == nil {
		return ""
	}
	name := envOpenAIKey
	if provider == domain.AIProviderGemini {
		name = envGeminiKey
	}
	v, _ := s.lookupEnv(name)
	return strings.TrimSpace(v)
}

// Validate checks the resolved settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getNonNegative treats an explicit zero as a value, not as unset.
func (s *SettingsService) getNonNegative(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val >= 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
