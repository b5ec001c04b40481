package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps one collection of chunks in the chunks table.
// Queries scan the matching rows and rank them by cosine similarity.
type VectorStore struct {
	store      *Store
	collection string
}

// Upsert inserts or replaces chunks in a single transaction.
func (v *VectorStore) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks with %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrExternalService, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, text, source, page, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			text = excluded.text,
			source = excluded.source,
			page = excluded.page,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing upsert: %w", domain.ErrExternalService, err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		_, err := stmt.ExecContext(ctx, c.ID, v.collection, c.Text, c.Metadata.Source, c.Metadata.Page,
			encodeEmbedding(embeddings[i]), len(embeddings[i]))
		if err != nil {
			return fmt.Errorf("%w: upserting chunk %s: %w", domain.ErrExternalService, c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing chunks: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Query returns the k chunks nearest to embedding among those matching filter.
// Ties keep insertion order.
func (v *VectorStore) Query(ctx context.Context, embedding []float32, k int, filter domain.MetadataFilter) ([]domain.Passage, error) {
	if k <= 0 {
		return []domain.Passage{}, nil
	}

	where, args, ok := filterClause(filter)
	if !ok {
		return []domain.Passage{}, nil
	}

	query := "SELECT text, source, page, embedding FROM chunks WHERE collection = ?" + where + " ORDER BY rowid"
	rows, err := v.store.db.QueryContext(ctx, query, append([]any{v.collection}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrExternalService, err)
	}
	defer rows.Close()

	type scored struct {
		passage domain.Passage
		score   float64
	}
	var hits []scored
	for rows.Next() {
		var (
			p    domain.Passage
			blob []byte
		)
		if err := rows.Scan(&p.Text, &p.Metadata.Source, &p.Metadata.Page, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrExternalService, err)
		}
		hits = append(hits, scored{passage: p, score: cosine(embedding, decodeEmbedding(blob))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %w", domain.ErrExternalService, err)
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
		out = append(out, h.passage)
	}
	return out, nil
}

// Count returns the number of chunks in the collection.
func (v *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection = ?", v.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %w", domain.ErrExternalService, err)
	}
	return n, nil
}

// Describe names the backend and database file.
func (v *VectorStore) Describe() (backend, location string) {
	return string(domain.VectorBackendSQLite), v.store.path
}

// Close is a no-op; the owning Store closes the connection.
func (v *VectorStore) Close() error {
	return nil
}

// filterClause translates a metadata filter into SQL. ok is false when the
// filter names a key no chunk can match.
func filterClause(filter domain.MetadataFilter) (clause string, args []any, ok bool) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		switch k {
		case "source":
			b.WriteString(" AND source = ?")
		case "page":
			b.WriteString(" AND CAST(page AS TEXT) = ?")
		default:
			return "", nil, false
		}
		args = append(args, filter[k])
	}
	return b.String(), args, true
}

// encodeEmbedding packs a vector as little-endian float32s.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// cosine returns the cosine similarity, or 0 for mismatched or zero vectors.
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
