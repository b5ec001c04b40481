package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// hashEmbedder maps text to a deterministic vector so identical text embeds identically.
type hashEmbedder struct {
	mu      sync.Mutex
	calls   int
	batches [][]string
	err     error
	short   bool // return one vector too few
	empty   bool // return empty vectors from Embed
}

func (e *hashEmbedder) vector(text string) []float32 {
	v := make([]float32, 8)
	for i, r := range text {
		v[i%8] += float32(r%31) + 1
	}
	return v
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.empty {
		return nil, nil
	}
	return e.vector(text), nil
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, e.vector(t))
	}
	if e.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *hashEmbedder) Dimensions() int              { return 8 }
func (e *hashEmbedder) ModelName() string            { return "hash" }
func (e *hashEmbedder) Ping(_ context.Context) error { return nil }
func (e *hashEmbedder) Close() error                 { return nil }

// mockLLM returns queued replies in order and records every request.
type mockLLM struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests [][]driven.ChatMessage
	options  []driven.CompleteOptions
}

func (m *mockLLM) Complete(_ context.Context, msgs []driven.ChatMessage, opts driven.CompleteOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, msgs)
	m.options = append(m.options, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// textExtractor treats raw bytes as text, splitting pages on form feeds.
type textExtractor struct {
	exts    []string
	failing map[int]bool
	err     error
}

func (x *textExtractor) Extract(_ context.Context, raw []byte, _ string) ([]domain.Page, error) {
	if x.err != nil {
		return nil, x.err
	}
	var pages []domain.Page
	for i, text := range strings.Split(string(raw), "\f") {
		p := domain.Page{Number: i + 1, Text: text}
		if x.failing[i+1] {
			p.Err = errors.New("broken page")
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (x *textExtractor) Supports(filename string) bool {
	exts := x.exts
	if len(exts) == 0 {
		exts = []string{".pdf", ".txt"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// stubPrompts serves fixed prompt overrides.
type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", domain.ErrNotFound
}

func (p stubPrompts) Reload() {}

// failingStore wraps a store and fails the chosen operations.
type failingStore struct {
	driven.VectorStore
	queryErr  error
	upsertErr error
}

func (s *failingStore) Query(ctx context.Context, e []float32, k int, f domain.MetadataFilter) ([]domain.Passage, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.VectorStore.Query(ctx, e, k, f)
}

func (s *failingStore) Upsert(ctx context.Context, c []domain.Chunk, e [][]float32) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.VectorStore.Upsert(ctx, c, e)
}

func charCounter() driven.TokenCounter {
	return driven.TokenCounterFunc(func(s string) int { return len([]rune(s)) })
}
