// Package plaintext extracts text and markdown files as a single page.
package plaintext

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var markdownExts = map[string]bool{".md": true, ".markdown": true}

// Extractor handles plain text and markdown documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (x *Extractor) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Supports returns true for text and markdown files.
func (x *Extractor) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".txt" || markdownExts[ext]
}

// Extract returns the whole file as page 1. Markdown formatting is simplified
// to plain text and invalid UTF-8 is replaced.
func (x *Extractor) Extract(_ context.Context, raw []byte, filename string) ([]domain.Page, error) {
	text := strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if markdownExts[strings.ToLower(filepath.Ext(filename))] {
		text = stripMarkdown(text)
	}

	return []domain.Page{{Number: 1, Text: strings.TrimSpace(text)}}, nil
}

var (
	codeFence    = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	rules        = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown syntax, keeping the readable text.
// Code block contents are kept since remedy notes often quote tables in them.
func stripMarkdown(content string) string {
	content = codeFence.ReplaceAllString(content, "$1")
	content = strings.ReplaceAll(content, "`", "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	return manyNewlines.ReplaceAllString(content, "\n\n")
}
