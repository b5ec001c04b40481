package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Retriever embeds a query and fetches its nearest passages.
// No re-ranking is applied beyond the store's ordering.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetriever creates a retriever.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to k passages nearest to query, nearest first,
// optionally restricted by filter.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filter domain.MetadataFilter) ([]domain.Passage, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, domain.ErrEmbedding
	}

	passages, err := r.store.Query(ctx, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	logger.Debug("Retrieved %d passages (k=%d, filter=%v)", len(passages), k, filter)
	return passages, nil
}
