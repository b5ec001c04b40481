package docconv

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract_DOCX(t *testing.T) {
	raw := createTestDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Walnut protects during change.</w:t></w:r></w:p>
<w:p><w:r><w:t>Honeysuckle is for the past.</w:t></w:r></w:p>
</w:body>
</w:document>`)

	pages, err := New().Extract(context.Background(), raw, "remedies.docx")

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Walnut protects during change.")
	assert.Contains(t, pages[0].Text, "Honeysuckle is for the past.")
}

func TestExtract_HTML(t *testing.T) {
	raw := []byte(`<html><head><title>Notes</title></head><body><p>Vervain for over-enthusiasm.</p></body></html>`)

	pages, err := New().Extract(context.Background(), raw, "notes.HTML")

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Vervain for over-enthusiasm.")
}

func TestExtract_Errors(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("not a zip"), "broken.docx")
	assert.ErrorIs(t, err, domain.ErrExtraction)

	_, err = New().Extract(context.Background(), []byte("x"), "a.doc")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Extract(ctx, []byte("<p>x</p>"), "a.html")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupports(t *testing.T) {
	x := New(WithReadability(true))
	assert.True(t, x.readability)
	for _, name := range []string{"a.docx", "a.ODT", "a.rtf", "a.html", "a.htm"} {
		assert.True(t, x.Supports(name), name)
	}
	assert.False(t, x.Supports("a.pdf"))
	assert.Len(t, x.Extensions(), len(mimeTypes))
}
