package driven

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// TextExtractor turns a binary document into ordered per-page text.
// A page that cannot be read is returned with empty Text and Err set;
// only a document that cannot be opened at all fails the call.
type TextExtractor interface {
	// Extract reads raw document bytes. The filename selects the format.
	Extract(ctx context.Context, raw []byte, filename string) ([]domain.Page, error)

	// Supports reports whether a file name has a handled extension.
	Supports(filename string) bool
}
