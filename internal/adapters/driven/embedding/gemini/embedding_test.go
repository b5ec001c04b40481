package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 3072, svc.Dimensions())
}

func TestDimensions_UnknownModel(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", Model: "text-embedding-004"})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, 768, svc.Dimensions())

	other, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", Model: "future-model"})
	require.NoError(t, err)
	defer other.Close()
	assert.Equal(t, 768, other.Dimensions())
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	defer svc.Close()

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestVectors(t *testing.T) {
	out, err := vectors([]*genai.ContentEmbedding{{Values: []float32{1, 2}}, {Values: []float32{3}}}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2}, {3}}, out)

	_, err = vectors([]*genai.ContentEmbedding{{Values: []float32{1}}}, 2)
	assert.ErrorIs(t, err, domain.ErrExternalService)

	_, err = vectors([]*genai.ContentEmbedding{{Values: nil}, nil}, 2)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Equal(t, 502, domain.StatusFor(err))
}
