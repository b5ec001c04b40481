package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// DuplicateFilter suppresses chunks already indexed for the same source.
// It is exact-text dedup gated by a single nearest-neighbour lookup,
// not semantic dedup.
type DuplicateFilter struct {
	store driven.VectorStore
}

// NewDuplicateFilter creates a filter over the given store.
func NewDuplicateFilter(store driven.VectorStore) *DuplicateFilter {
	return &DuplicateFilter{store: store}
}

// IsDuplicate reports whether the nearest stored chunk with the same source
// has exactly the same text. Each call issues one store query. An empty
// source still queries and matches chunks stored with an empty source.
func (f *DuplicateFilter) IsDuplicate(ctx context.Context, text string, embedding []float32, source string) (bool, error) {
	hits, err := f.store.Query(ctx, embedding, 1, domain.SourceFilter(source))
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	for _, hit := range hits {
		if hit.Text == text {
			return true, nil
		}
	}
	return false, nil
}

// Filter returns the chunks, with their embeddings, that are not duplicates.
// Order is preserved.
func (f *DuplicateFilter) Filter(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) ([]domain.Chunk, [][]float32, error) {
	keptChunks := make([]domain.Chunk, 0, len(chunks))
	keptEmbeddings := make([][]float32, 0, len(chunks))

	for i, chunk := range chunks {
		dup, err := f.IsDuplicate(ctx, chunk.Text, embeddings[i], chunk.Metadata.Source)
		if err != nil {
			return nil, nil, err
		}
		if dup {
			continue
		}
		keptChunks = append(keptChunks, chunk)
		keptEmbeddings = append(keptEmbeddings, embeddings[i])
	}

	return keptChunks, keptEmbeddings, nil
}
