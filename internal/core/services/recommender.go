package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure RecommendationComposer implements PromptStoreAware.
var _ driven.PromptStoreAware = (*RecommendationComposer)(nil)

// maxRecommendPassages caps how many passages are placed in the recommender prompt.
const maxRecommendPassages = 12

// RecommendationComposer turns an intake summary into essence recommendations
// grounded on retrieved passages.
type RecommendationComposer struct {
	llm       driven.LLMService
	retriever *Retriever
	k         int
	prompts   driven.PromptStore
}

// NewRecommendationComposer creates a composer retrieving k passages per summary.
func NewRecommendationComposer(llm driven.LLMService, retriever *Retriever, k int) *RecommendationComposer {
	if k <= 0 || k > maxRecommendPassages {
		k = maxRecommendPassages
	}
	return &RecommendationComposer{llm: llm, retriever: retriever, k: k}
}

// SetPromptStore overrides the built-in recommender system prompt.
func (c *RecommendationComposer) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Recommend retrieves passages for the summary and asks the oracle for
// plain-text recommendations in the fixed format.
func (c *RecommendationComposer) Recommend(ctx context.Context, summary string) (string, error) {
	if c.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	passages, err := c.retriever.Retrieve(ctx, summary, c.k, nil)
	if err != nil {
		return "", fmt.Errorf("retrieve for recommendation: %w", err)
	}

	prompt := fmt.Sprintf(
		"User summary: %s\n\nContext passages:\n%s\n\nNow produce recommendations as per the system format.",
		summary, recommendContext(passages),
	)

	out, err := c.llm.Complete(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(c.prompts, driven.PromptRecommenderSystem, domain.RecommenderSystemPrompt)},
		{Role: driven.RoleUser, Content: prompt},
	}, driven.CompleteOptions{})
	if err != nil {
		return "", fmt.Errorf("recommendation completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// recommendContext renders passages as text followed by a source line.
func recommendContext(passages []domain.Passage) string {
	if len(passages) > maxRecommendPassages {
		passages = passages[:maxRecommendPassages]
	}
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		where := p.Metadata.Source
		if p.Metadata.Page > 0 {
			where += fmt.Sprintf(", p.%d", p.Metadata.Page)
		}
		parts = append(parts, fmt.Sprintf("%s\n(Source: %s)", p.Text, where))
	}
	return strings.Join(parts, "\n\n")
}
