// Package docconv extracts office and web documents through code.sajari.com/docconv.
package docconv

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor converts docx, odt, rtf and html documents to a single page of text.
// These formats carry no reliable page boundaries.
type Extractor struct {
	readability bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithReadability enables readability filtering of HTML boilerplate.
func WithReadability(enabled bool) Option {
	return func(x *Extractor) {
		x.readability = enabled
	}
}

// New creates a new docconv extractor.
func New(opts ...Option) *Extractor {
	x := &Extractor{}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

var mimeTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".rtf":  "application/rtf",
	".html": "text/html",
	".htm":  "text/html",
}

// Extensions returns the extensions this extractor handles.
func (x *Extractor) Extensions() []string {
	return []string{".docx", ".odt", ".rtf", ".html", ".htm"}
}

// Supports returns true for the handled extensions.
func (x *Extractor) Supports(filename string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extract converts the document and returns its body as page 1.
func (x *Extractor) Extract(ctx context.Context, raw []byte, filename string) ([]domain.Page, error) {
	name := filepath.Base(filename)
	mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := docconv.Convert(bytes.NewReader(raw), mimeType, x.readability)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}

	return []domain.Page{{Number: 1, Text: strings.TrimSpace(res.Body)}}, nil
}
