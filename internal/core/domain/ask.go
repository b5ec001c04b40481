package domain

// NoContextAnswer is returned by ask when retrieval finds nothing.
const NoContextAnswer = "I couldn't find anything in the current index."

// Passage is a retrieved chunk text with its provenance, nearest first.
type Passage struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// AskRequest is a single retrieval-augmented question.
type AskRequest struct {
	Question string         `json:"question"`
	Where    MetadataFilter `json:"where,omitempty"`

	// K is the number of passages to retrieve. Zero means the configured default.
	K int `json:"k,omitempty"`
}

// Citation identifies a passage that informed an answer.
type Citation struct {
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
}

// Answer is the reply to an AskRequest.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// IndexStats describes the vector store backing the index.
type IndexStats struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
	Backend    string `json:"backend"`
	Location   string `json:"persist_directory"`
}
