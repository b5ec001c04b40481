// Package postgres provides a pgvector-backed vector store for shared deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// tableName holds the chunks of every collection.
const tableName = "zenji_chunks"

var collectionPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS zenji_chunks (
    seq        BIGSERIAL,
    id         TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    text       TEXT NOT NULL,
    source     TEXT NOT NULL,
    page       INTEGER NOT NULL,
    embedding  vector NOT NULL
);

CREATE INDEX IF NOT EXISTS zenji_chunks_collection_idx ON zenji_chunks (collection, source);
`

const upsertSQL = `
INSERT INTO zenji_chunks (id, collection, text, source, page, embedding)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    collection = EXCLUDED.collection,
    text = EXCLUDED.text,
    source = EXCLUDED.source,
    page = EXCLUDED.page,
    embedding = EXCLUDED.embedding
`

// VectorStore keeps chunks in a pgvector table ranked by cosine distance.
type VectorStore struct {
	pool       *pgxpool.Pool
	collection string
	location   string
}

// NewVectorStore connects to databaseURL and ensures the schema exists.
func NewVectorStore(ctx context.Context, databaseURL, collection string) (*VectorStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database url is empty", domain.ErrInvalidInput)
	}
	if !collectionPattern.MatchString(collection) {
		return nil, fmt.Errorf("%w: invalid collection name %q", domain.ErrInvalidInput, collection)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing database url: %w", domain.ErrInvalidInput, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to postgres: %w", domain.ErrExternalService, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", domain.ErrExternalService, err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: bootstrapping schema: %w", domain.ErrExternalService, err)
	}

	return &VectorStore{
		pool:       pool,
		collection: collection,
		location:   fmt.Sprintf("%s/%s", cfg.ConnConfig.Host, cfg.ConnConfig.Database),
	}, nil
}

// Upsert writes chunks in one batch, which postgres runs as a single transaction.
func (v *VectorStore) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks with %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(upsertSQL, c.ID, v.collection, c.Text, c.Metadata.Source, c.Metadata.Page,
			pgvector.NewVector(embeddings[i]))
	}

	results := v.pool.SendBatch(ctx, batch)
	for _, c := range chunks {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("%w: upserting chunk %s: %w", domain.ErrExternalService, c.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("%w: closing batch: %w", domain.ErrExternalService, err)
	}
	return nil
}

// Query returns the k nearest chunks by cosine distance. Ties keep insertion order.
func (v *VectorStore) Query(ctx context.Context, embedding []float32, k int, filter domain.MetadataFilter) ([]domain.Passage, error) {
	if k <= 0 {
		return []domain.Passage{}, nil
	}

	query, args, err := buildQuery(v.collection, embedding, k, filter)
	if errors.Is(err, errUnmatchable) {
		return []domain.Passage{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := v.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrExternalService, err)
	}
	defer rows.Close()

	out := []domain.Passage{}
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.Text, &p.Metadata.Source, &p.Metadata.Page); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrExternalService, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %w", domain.ErrExternalService, err)
	}
	return out, nil
}

// Count returns the number of chunks in the collection.
func (v *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := v.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+tableName+" WHERE collection = $1", v.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %w", domain.ErrExternalService, err)
	}
	return n, nil
}

// Describe names the backend and database.
func (v *VectorStore) Describe() (backend, location string) {
	return string(domain.VectorBackendPostgres), v.location
}

// Close releases the connection pool.
func (v *VectorStore) Close() error {
	v.pool.Close()
	return nil
}

var errUnmatchable = errors.New("filter matches nothing")

// buildQuery renders the similarity query for filter.
func buildQuery(collection string, embedding []float32, k int, filter domain.MetadataFilter) (string, []any, error) {
	args := []any{collection, pgvector.NewVector(embedding)}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString("SELECT text, source, page FROM " + tableName + " WHERE collection = $1")
	for _, key := range keys {
		switch key {
		case "source":
			args = append(args, filter[key])
			b.WriteString(" AND source = $" + strconv.Itoa(len(args)))
		case "page":
			page, err := strconv.Atoi(filter[key])
			if err != nil {
				return "", nil, errUnmatchable
			}
			args = append(args, page)
			b.WriteString(" AND page = $" + strconv.Itoa(len(args)))
		default:
			return "", nil, errUnmatchable
		}
	}

	args = append(args, k)
	b.WriteString(" ORDER BY embedding <=> $2, seq LIMIT $" + strconv.Itoa(len(args)))
	return b.String(), args, nil
}
