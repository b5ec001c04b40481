// Package batcher packs texts into token-budgeted batches for embedding requests.
package batcher

import "github.com/custodia-labs/zenji/internal/core/ports/driven"

// DefaultMaxTokens is the soft token ceiling per embedding request.
const DefaultMaxTokens = 250000

// Batcher greedily groups texts so each batch stays within maxTokens.
// The ceiling is a packing heuristic: a single text larger than the ceiling
// gets a batch of its own instead of being dropped.
type Batcher struct {
	counter   driven.TokenCounter
	maxTokens int
}

// New creates a batcher. A non-positive maxTokens selects DefaultMaxTokens.
func New(counter driven.TokenCounter, maxTokens int) *Batcher {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Batcher{counter: counter, maxTokens: maxTokens}
}

// MaxTokens returns the configured ceiling.
func (b *Batcher) MaxTokens() int {
	return b.maxTokens
}

// Batch splits texts into consecutive batches preserving overall order.
func (b *Batcher) Batch(texts []string) [][]string {
	var (
		batches [][]string
		current []string
		tokens  int
	)

	for _, t := range texts {
		n := b.counter.Count(t)
		if tokens+n > b.maxTokens && len(current) > 0 {
			batches = append(batches, current)
			current = nil
			tokens = 0
		}
		current = append(current, t)
		tokens += n
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}
