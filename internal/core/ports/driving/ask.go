package driving

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// AskService answers one question from the indexed documents.
type AskService interface {
	Ask(ctx context.Context, req domain.AskRequest) (domain.Answer, error)
}

// StatsService reports on the index.
type StatsService interface {
	Stats(ctx context.Context) (domain.IndexStats, error)
}
