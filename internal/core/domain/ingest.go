package domain

import (
	"math"
	"net/http"
	"time"
)

// Messages reported in IngestResult.Error.
const (
	MsgNoExtractableText = "No extractable text found."
	MsgAllDuplicates     = "All chunks are duplicates."
	MsgFilenameRequired  = "Filename is required."
	MsgUnsupportedFile   = "Unsupported document type."
)

// IngestResult is the outcome of ingesting one document, or the aggregate of a folder run.
// It is returned, never stored.
type IngestResult struct {
	// File is the document name for single-document runs.
	File string `json:"file,omitempty"`

	// Accepted is the number of chunks upserted.
	Accepted int `json:"chunks"`

	// Files is the number of documents that contributed chunks (folder runs only).
	Files int `json:"files,omitempty"`

	// Error is a user-facing message. An all-duplicates run sets it with status 200.
	Error string `json:"msg,omitempty"`

	// StatusCode is the boundary status for this result.
	StatusCode int `json:"-"`

	// Elapsed is zero when the run ended before upserting.
	Elapsed time.Duration `json:"-"`
}

// OK reports whether the run ended in a success state.
func (r IngestResult) OK() bool {
	return r.StatusCode == http.StatusOK && r.Error == ""
}

// Duplicate reports whether every chunk was already indexed.
func (r IngestResult) Duplicate() bool {
	return r.StatusCode == http.StatusOK && r.Error == MsgAllDuplicates
}

// Seconds returns the elapsed time rounded to two decimals.
func (r IngestResult) Seconds() float64 {
	return math.Round(r.Elapsed.Seconds()*100) / 100
}

// IngestResponse is the boundary shape of an IngestResult.
type IngestResponse struct {
	OK      bool    `json:"ok"`
	Chunks  int     `json:"chunks"`
	File    string  `json:"file,omitempty"`
	Files   int     `json:"files,omitempty"`
	Seconds float64 `json:"seconds"`
	Msg     string  `json:"msg,omitempty"`
}

// Response converts the result for the CLI, HTTP and MCP boundaries.
func (r IngestResult) Response() IngestResponse {
	return IngestResponse{
		OK:      r.OK(),
		Chunks:  r.Accepted,
		File:    r.File,
		Files:   r.Files,
		Seconds: r.Seconds(),
		Msg:     r.Error,
	}
}
