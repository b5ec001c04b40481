package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Ensure services implement their interfaces.
var (
	_ driving.AskService      = (*AskService)(nil)
	_ driving.StatsService    = (*StatsService)(nil)
	_ driven.PromptStoreAware = (*AskService)(nil)
)

// askTemperature keeps answers close to the retrieved context.
const askTemperature = 0.1

// AskService answers questions from retrieved passages only.
type AskService struct {
	retriever *Retriever
	llm       driven.LLMService
	topK      int
	prompts   driven.PromptStore
}

// NewAskService creates an ask service. topK is used when a request sets no K.
func NewAskService(retriever *Retriever, llm driven.LLMService, topK int) *AskService {
	return &AskService{retriever: retriever, llm: llm, topK: topK}
}

// SetPromptStore overrides the built-in retrieval system prompt.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ask retrieves passages for the question and answers from them.
// With nothing retrieved it returns domain.NoContextAnswer without
// calling the completion oracle.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (domain.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	k := req.K
	if k <= 0 {
		k = s.topK
	}
	logger.Event("ask.start", "k", k)

	passages, err := s.retriever.Retrieve(ctx, question, k, req.Where)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(passages) == 0 {
		logger.Event("ask.no_context")
		return domain.Answer{Answer: domain.NoContextAnswer, Citations: []domain.Citation{}}, nil
	}

	if s.llm == nil {
		return domain.Answer{}, domain.ErrLLMUnavailable
	}

	out, err := s.llm.Complete(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(s.prompts, driven.PromptRetrievalSystem, domain.RetrievalSystemPrompt)},
		{Role: driven.RoleUser, Content: askPrompt(question, passages)},
	}, driven.CompleteOptions{Temperature: driven.Temperature(askTemperature)})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("ask completion: %w", err)
	}

	return domain.Answer{
		Answer:    strings.TrimSpace(out),
		Citations: citations(passages),
	}, nil
}

func askPrompt(question string, passages []domain.Passage) string {
	sections := make([]string, len(passages))
	for i, p := range passages {
		sections[i] = fmt.Sprintf("[%d] %s", i+1, p.Text)
	}

	var b strings.Builder
	b.WriteString("Answer the question using ONLY the context.\n\n")
	b.WriteString("Question: " + question + "\n\n")
	b.WriteString("Context:\n" + strings.Join(sections, "\n\n") + "\n\n")
	b.WriteString("Instructions:\n")
	b.WriteString("- If uncertain, say you don't know from these documents.\n")
	b.WriteString("- Add a one-line disclaimer if health/contraindications are discussed.\n\n")
	b.WriteString("Answer:\n")
	return b.String()
}

// citations lists each distinct source/page once, in retrieval order.
func citations(passages []domain.Passage) []domain.Citation {
	seen := make(map[domain.Citation]bool, len(passages))
	out := make([]domain.Citation, 0, len(passages))
	for _, p := range passages {
		c := domain.Citation{Source: p.Metadata.Source, Page: p.Metadata.Page}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// StatsService reports on the vector store.
type StatsService struct {
	store      driven.VectorStore
	collection string
}

// NewStatsService creates a stats service for the named collection.
func NewStatsService(store driven.VectorStore, collection string) *StatsService {
	return &StatsService{store: store, collection: collection}
}

// Stats returns the chunk count and where the index lives.
func (s *StatsService) Stats(ctx context.Context) (domain.IndexStats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("count chunks: %w", err)
	}
	backend, location := s.store.Describe()
	return domain.IndexStats{
		Collection: s.collection,
		Count:      count,
		Backend:    backend,
		Location:   location,
	}, nil
}
