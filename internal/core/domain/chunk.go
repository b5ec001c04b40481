package domain

import "strconv"

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	// Source is the document name, usually the file base name.
	Source string `json:"source"`

	// Page is the 1-based page number within the source.
	Page int `json:"page"`
}

// Chunk is a bounded slice of page text, the unit that is embedded and indexed.
// IDs are freshly generated per ingestion run and never reused.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Page is the extracted text of one page of a document.
type Page struct {
	// Number is 1-based.
	Number int

	// Text is empty when the page could not be read.
	Text string

	// Err records a per-page extraction failure. It is informational only.
	Err error
}

// StoredChunk is a chunk as returned by the vector store, with its embedding.
type StoredChunk struct {
	Chunk
	Embedding []float32
}

// MetadataFilter restricts vector store queries to chunks whose metadata
// matches every key. Supported keys are "source" and "page".
type MetadataFilter map[string]string

// Matches reports whether the metadata satisfies the filter.
func (f MetadataFilter) Matches(m ChunkMetadata) bool {
	for k, v := range f {
		switch k {
		case "source":
			if m.Source != v {
				return false
			}
		case "page":
			if strconv.Itoa(m.Page) != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// SourceFilter builds the filter used for duplicate suppression.
func SourceFilter(source string) MetadataFilter {
	return MetadataFilter{"source": source}
}
