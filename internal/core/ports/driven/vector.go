package driven

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// VectorStore persists chunks with their embeddings and answers
// nearest-neighbour queries. The store provides its own concurrency control;
// concurrent upserts of the same id are last-write-wins.
type VectorStore interface {
	// Upsert inserts or replaces chunks. embeddings[i] belongs to chunks[i].
	Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error

	// Query returns up to k chunks nearest to embedding, nearest first,
	// restricted to chunks matching filter when it is non-empty.
	Query(ctx context.Context, embedding []float32, k int, filter domain.MetadataFilter) ([]domain.Passage, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Describe returns the backend name and location for stats.
	Describe() (backend, location string)

	// Close releases resources.
	Close() error
}
