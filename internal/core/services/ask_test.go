package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenji/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// seededRetriever indexes the chunks into a memory store using the hash embedder.
func seededRetriever(t *testing.T, chunks ...domain.Chunk) (*Retriever, *memory.VectorStore, *hashEmbedder) {
	t.Helper()
	emb := &hashEmbedder{}
	store := memory.NewVectorStore()
	if len(chunks) > 0 {
		vecs := make([][]float32, len(chunks))
		for i, c := range chunks {
			vecs[i] = emb.vector(c.Text)
		}
		require.NoError(t, store.Upsert(context.Background(), chunks, vecs))
	}
	return NewRetriever(emb, store), store, emb
}

func passageChunk(id, text, source string, page int) domain.Chunk {
	return domain.Chunk{ID: id, Text: text, Metadata: domain.ChunkMetadata{Source: source, Page: page}}
}

func TestAsk_NoContextSkipsOracle(t *testing.T) {
	retriever, _, _ := seededRetriever(t)
	llm := &mockLLM{}
	svc := NewAskService(retriever, llm, 5)

	ans, err := svc.Ask(context.Background(), domain.AskRequest{Question: "What is Mimulus for?"})

	require.NoError(t, err)
	assert.Equal(t, domain.NoContextAnswer, ans.Answer)
	assert.NotNil(t, ans.Citations)
	assert.Empty(t, ans.Citations)
	assert.Zero(t, llm.calls())
}

func TestAsk_AnswersFromPassages(t *testing.T) {
	retriever, _, _ := seededRetriever(t,
		passageChunk("1", "Mimulus is for fear of known things.", "bach.pdf", 3),
		passageChunk("2", "Aspen is for vague fears.", "bach.pdf", 3),
		passageChunk("3", "Rock Rose is for terror.", "notes.pdf", 1),
	)
	llm := &mockLLM{replies: []string{"  Mimulus helps with known fears. [1]  "}}
	svc := NewAskService(retriever, llm, 5)

	ans, err := svc.Ask(context.Background(), domain.AskRequest{Question: "  What is Mimulus for?  "})

	require.NoError(t, err)
	assert.Equal(t, "Mimulus helps with known fears. [1]", ans.Answer)
	assert.ElementsMatch(t, []domain.Citation{{Source: "bach.pdf", Page: 3}, {Source: "notes.pdf", Page: 1}}, ans.Citations)

	require.Len(t, llm.requests, 1)
	msgs := llm.requests[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Equal(t, domain.RetrievalSystemPrompt, msgs[0].Content)
	assert.Contains(t, msgs[1].Content, "Question: What is Mimulus for?\n")
	assert.Contains(t, msgs[1].Content, "[1] ")
	assert.Contains(t, msgs[1].Content, "[3] ")
	assert.Contains(t, msgs[1].Content, "Mimulus is for fear of known things.")

	opts := llm.options[0]
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.1, *opts.Temperature, 1e-9)
	assert.Empty(t, opts.Schema)
}

func TestAsk_KAndWhere(t *testing.T) {
	retriever, _, _ := seededRetriever(t,
		passageChunk("1", "alpha", "a.pdf", 1),
		passageChunk("2", "beta", "a.pdf", 2),
		passageChunk("3", "gamma", "b.pdf", 1),
	)

	t.Run("default k", func(t *testing.T) {
		llm := &mockLLM{replies: []string{"ok"}}
		ans, err := NewAskService(retriever, llm, 2).Ask(context.Background(), domain.AskRequest{Question: "q"})
		require.NoError(t, err)
		assert.NotContains(t, llm.requests[0][1].Content, "[3]")
		assert.LessOrEqual(t, len(ans.Citations), 2)
	})

	t.Run("explicit k", func(t *testing.T) {
		llm := &mockLLM{replies: []string{"ok"}}
		_, err := NewAskService(retriever, llm, 2).Ask(context.Background(), domain.AskRequest{Question: "q", K: 1})
		require.NoError(t, err)
		assert.NotContains(t, llm.requests[0][1].Content, "[2]")
	})

	t.Run("where filter", func(t *testing.T) {
		llm := &mockLLM{replies: []string{"ok"}}
		ans, err := NewAskService(retriever, llm, 5).Ask(context.Background(), domain.AskRequest{
			Question: "q",
			Where:    domain.MetadataFilter{"source": "b.pdf"},
		})
		require.NoError(t, err)
		assert.Equal(t, []domain.Citation{{Source: "b.pdf", Page: 1}}, ans.Citations)
	})

	t.Run("where filter with no match", func(t *testing.T) {
		llm := &mockLLM{}
		ans, err := NewAskService(retriever, llm, 5).Ask(context.Background(), domain.AskRequest{
			Question: "q",
			Where:    domain.MetadataFilter{"source": "missing.pdf"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.NoContextAnswer, ans.Answer)
		assert.Zero(t, llm.calls())
	})
}

func TestAsk_Errors(t *testing.T) {
	retriever, store, emb := seededRetriever(t, passageChunk("1", "alpha", "a.pdf", 1))

	t.Run("blank question", func(t *testing.T) {
		_, err := NewAskService(retriever, &mockLLM{}, 5).Ask(context.Background(), domain.AskRequest{Question: " \n"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 400, domain.StatusFor(err))
	})

	t.Run("no llm", func(t *testing.T) {
		_, err := NewAskService(retriever, nil, 5).Ask(context.Background(), domain.AskRequest{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("oracle failure", func(t *testing.T) {
		llm := &mockLLM{err: domain.ErrExternalService}
		_, err := NewAskService(retriever, llm, 5).Ask(context.Background(), domain.AskRequest{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrExternalService)
		assert.Equal(t, 502, domain.StatusFor(err))
	})

	t.Run("store failure", func(t *testing.T) {
		broken := NewRetriever(emb, &failingStore{VectorStore: store, queryErr: domain.ErrExternalService})
		_, err := NewAskService(broken, &mockLLM{}, 5).Ask(context.Background(), domain.AskRequest{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrExternalService)
	})
}

func TestAsk_PromptOverride(t *testing.T) {
	retriever, _, _ := seededRetriever(t, passageChunk("1", "alpha", "a.pdf", 1))
	llm := &mockLLM{replies: []string{"ok"}}
	svc := NewAskService(retriever, llm, 5)
	svc.SetPromptStore(stubPrompts{driven.PromptRetrievalSystem: "Be brief."})

	_, err := svc.Ask(context.Background(), domain.AskRequest{Question: "q"})

	require.NoError(t, err)
	assert.Equal(t, "Be brief.", llm.requests[0][0].Content)
}

func TestCitations(t *testing.T) {
	passages := []domain.Passage{
		{Text: "a", Metadata: domain.ChunkMetadata{Source: "x.pdf", Page: 2}},
		{Text: "b", Metadata: domain.ChunkMetadata{Source: "y.pdf", Page: 1}},
		{Text: "c", Metadata: domain.ChunkMetadata{Source: "x.pdf", Page: 2}},
		{Text: "d", Metadata: domain.ChunkMetadata{Source: "x.pdf", Page: 3}},
	}

	assert.Equal(t, []domain.Citation{
		{Source: "x.pdf", Page: 2},
		{Source: "y.pdf", Page: 1},
		{Source: "x.pdf", Page: 3},
	}, citations(passages))
	assert.Empty(t, citations(nil))
}

func TestStats(t *testing.T) {
	_, store, _ := seededRetriever(t,
		passageChunk("1", "alpha", "a.pdf", 1),
		passageChunk("2", "beta", "a.pdf", 2),
	)

	stats, err := NewStatsService(store, "zenji_docs").Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{
		Collection: "zenji_docs",
		Count:      2,
		Backend:    "memory",
		Location:   ":memory:",
	}, stats)
}
