// Package chunker splits page text into fixed-size overlapping windows.
package chunker

import (
	"iter"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 250

// Chunker splits text into windows of chunkSize characters, advancing by
// chunkSize-overlap. Sizes count characters (runes), not bytes.
type Chunker struct {
	chunkSize int
	overlap   int
	newID     func() string
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// An overlap at or above the chunk size is kept; Split then emits at most one window.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithIDFunc overrides chunk id generation.
func WithIDFunc(fn func() string) Option {
	return func(c *Chunker) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		newID:     func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Split lazily yields the windows of text tagged with meta.
// Blank windows are dropped; kept windows are not trimmed.
func (c *Chunker) Split(text string, meta domain.ChunkMetadata) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		runes := []rune(text)
		n := len(runes)
		step := c.chunkSize - c.overlap

		for start := 0; start < n; start += step {
			end := min(start+c.chunkSize, n)

			window := string(runes[start:end])
			if strings.TrimSpace(window) != "" {
				chunk := domain.Chunk{
					ID:       c.newID(),
					Text:     window,
					Metadata: meta,
				}
				if !yield(chunk) {
					return
				}
			}

			// The tail is covered; further windows would repeat overlap only.
			if end == n {
				return
			}

			// Degenerate configuration: a non-positive step would never advance.
			if step <= 0 {
				return
			}
		}
	}
}

// ChunkPages splits every page of a document, in page order.
func (c *Chunker) ChunkPages(source string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		meta := domain.ChunkMetadata{Source: source, Page: page.Number}
		for chunk := range c.Split(page.Text, meta) {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
