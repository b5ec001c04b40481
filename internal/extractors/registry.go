package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/extractors/docconv"
	"github.com/custodia-labs/zenji/internal/extractors/pdf"
	"github.com/custodia-labs/zenji/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Extractor is a format-specific extractor that declares its extensions.
type Extractor interface {
	driven.TextExtractor

	// Extensions returns the lower-case extensions handled, with leading dots.
	Extensions() []string
}

// Registry dispatches extraction to the extractor registered for a file's extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// Default returns a registry with every built-in extractor registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docconv.New())
	r.Register(plaintext.New())
	return r
}

// Register maps each of the extractor's extensions to it.
// A later registration for the same extension wins.
func (r *Registry) Register(x Extractor) {
	for _, ext := range x.Extensions() {
		r.byExt[strings.ToLower(ext)] = x
	}
}

// Extract reads the document with the extractor for its extension.
func (r *Registry) Extract(ctx context.Context, raw []byte, filename string) ([]domain.Page, error) {
	x, ok := r.byExt[extension(filename)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(filename))
	}
	return x.Extract(ctx, raw, filename)
}

// Supports returns true if an extractor is registered for the file's extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[extension(filename)]
	return ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
