package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("  Walnut\r\nfor change\n\n")...)

	pages, err := New().Extract(context.Background(), raw, "notes.txt")

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Walnut\nfor change", pages[0].Text)
	assert.NoError(t, pages[0].Err)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	pages, err := New().Extract(context.Background(), []byte{'a', 0xff, 'b'}, "x.txt")

	require.NoError(t, err)
	assert.Equal(t, "a�b", pages[0].Text)
}

func TestExtract_Empty(t *testing.T) {
	pages, err := New().Extract(context.Background(), []byte(" \n\t"), "x.txt")

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Text)
}

func TestExtract_MarkdownOnlyForMarkdownFiles(t *testing.T) {
	raw := []byte("# Title\n\n**bold**")

	md, err := New().Extract(context.Background(), raw, "a.MD")
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nbold", md[0].Text)

	txt, err := New().Extract(context.Background(), raw, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\n**bold**", txt[0].Text)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"headings", "## Mimulus\ntext", "Mimulus\ntext"},
		{"links", "see [Bach](https://example.com/bach)", "see Bach"},
		{"images", "![logo](logo.png)Rock Rose", "Rock Rose"},
		{"emphasis", "*Aspen* and __Elm__ and **Oak**", "Aspen and Elm and Oak"},
		{"snake case survives", "rock_rose", "rock_rose"},
		{"lists", "- Agrimony\n* Beech\n1. Centaury", "Agrimony\nBeech\nCentaury"},
		{"blockquote", "> calm", "calm"},
		{"rule", "above\n---\nbelow", "above\n\nbelow"},
		{"inline code", "use `zenji ask`", "use zenji ask"},
		{"code fence keeps body", "```text\nStar of Bethlehem\n```", "Star of Bethlehem\n"},
		{"collapses blank lines", "a\n\n\n\nb", "a\n\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestSupports(t *testing.T) {
	x := New()
	assert.True(t, x.Supports("a.txt"))
	assert.True(t, x.Supports("a.Markdown"))
	assert.False(t, x.Supports("a.pdf"))
	assert.ElementsMatch(t, []string{".txt", ".md", ".markdown"}, x.Extensions())
}
