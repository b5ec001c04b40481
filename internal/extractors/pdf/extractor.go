// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads PDF documents page by page.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (x *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Supports returns true for .pdf files.
func (x *Extractor) Supports(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// Extract returns one Page per PDF page, numbered from 1.
// A page whose content cannot be decoded is returned with empty text and
// Err set for the caller to report. A document that cannot be opened wraps domain.ErrExtraction.
func (x *Extractor) Extract(ctx context.Context, raw []byte, filename string) ([]domain.Page, error) {
	name := filepath.Base(filename)

	reader, err := open(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}

	n := reader.NumPage()
	pages := make([]domain.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := pageText(reader, i)
		if err != nil {
			pages = append(pages, domain.Page{Number: i, Err: err})
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: strings.TrimSpace(text)})
	}

	logger.Debug("Extracted %d pages from %s", n, name)
	return pages, nil
}

// open parses the document trailer. The parser panics on some malformed
// inputs, which is reported as an error.
func open(raw []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
}

func pageText(reader *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()
	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
