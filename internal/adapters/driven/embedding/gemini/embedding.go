// Package gemini provides an embedding service adapter using the Google Gemini API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultModel is the default Gemini embedding model.
const DefaultModel = "gemini-embedding-001"

// Model dimensions for Gemini embedding models.
var modelDimensions = map[string]int{
	"gemini-embedding-001": 3072,
	"text-embedding-004":   768,
	"embedding-001":        768,
}

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model to use (default: gemini-embedding-001).
	Model string

	// Endpoint overrides the API endpoint.
	Endpoint string
}

// EmbeddingService generates embeddings using Gemini batch embedding.
type EmbeddingService struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	name   string
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := client.EmbeddingModel(cfg.Model)

	return &EmbeddingService{client: client, model: model, name: cfg.Model}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one BatchEmbedContents call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batch := s.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := s.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini batch embed: %w", domain.ErrExternalService, err)
	}
	return vectors(resp.Embeddings, len(texts))
}

// vectors unpacks embeddings, requiring exactly one non-empty vector per input.
func vectors(embeddings []*genai.ContentEmbedding, want int) ([][]float32, error) {
	if len(embeddings) != want {
		return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d inputs", domain.ErrExternalService, len(embeddings), want)
	}
	out := make([][]float32, 0, want)
	for i, e := range embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: gemini returned no vector for input %d", domain.ErrExternalService, i)
		}
		out = append(out, e.Values)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	if d, ok := modelDimensions[s.name]; ok {
		return d
	}
	return 768
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.name
}

// Ping fetches the model info, which validates the key without embedding anything.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.model.Info(ctx); err != nil {
		return fmt.Errorf("%w: gemini: ping failed: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Close releases the client connection.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}
