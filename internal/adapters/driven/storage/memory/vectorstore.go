package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a brute-force cosine vector store held in memory.
// Upserting an existing id replaces its text, metadata and embedding.
type VectorStore struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]domain.StoredChunk
}

// NewVectorStore creates an empty store.
func NewVectorStore() *VectorStore {
	return &VectorStore{rows: make(map[string]domain.StoredChunk)}
}

// Upsert stores chunks with their embeddings, matched by position.
func (s *VectorStore) Upsert(_ context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks with %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range chunks {
		if _, exists := s.rows[c.ID]; !exists {
			s.order = append(s.order, c.ID)
		}
		s.rows[c.ID] = domain.StoredChunk{
			Chunk:     c,
			Embedding: slices.Clone(embeddings[i]),
		}
	}
	return nil
}

// Query returns the k passages most similar to embedding among those
// matching filter. Ties keep insertion order.
func (s *VectorStore) Query(_ context.Context, embedding []float32, k int, filter domain.MetadataFilter) ([]domain.Passage, error) {
	if k <= 0 {
		return []domain.Passage{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		row   domain.StoredChunk
		score float64
	}
	hits := make([]scored, 0, len(s.rows))
	for _, id := range s.order {
		row := s.rows[id]
		if !filter.Matches(row.Metadata) {
			continue
		}
		hits = append(hits, scored{row: row, score: cosine(embedding, row.Embedding)})
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	out := make([]domain.Passage, 0, min(k, len(hits)))
	for _, h := range hits[:min(k, len(hits))] {
		out = append(out, domain.Passage{Text: h.row.Text, Metadata: h.row.Metadata})
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

// Describe names the backend.
func (s *VectorStore) Describe() (backend, location string) {
	return string(domain.VectorBackendMemory), ":memory:"
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

// cosine returns the cosine similarity, or 0 when either vector is zero
// or their lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
