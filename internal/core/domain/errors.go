package domain

import (
	"errors"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor handles the document type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Dialog and ask are disabled without a completion oracle.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrConfigNotFound indicates a configuration key has no value.
	ErrConfigNotFound = errors.New("config key not found")

	// Ingestion Errors.

	// ErrExtraction indicates a single page could not be read.
	// It is recovered locally: the page contributes empty text.
	ErrExtraction = errors.New("text extraction failed")

	// ErrNoExtractableText indicates a document produced zero chunks.
	ErrNoExtractableText = errors.New("no extractable text")

	// Oracle and Store Errors.

	// ErrExternalService indicates an embedding, completion or vector store
	// call failed in transport. It is never retried inside the core.
	ErrExternalService = errors.New("external service error")

	// ErrEmbedding indicates a query produced no vector to search with.
	ErrEmbedding = errors.New("failed to embed text")

	// Dialog Errors.

	// ErrPlannerSchema indicates the planner returned an action that cannot
	// be parsed or violates a constraint.
	ErrPlannerSchema = errors.New("planner returned an invalid action")

	// ErrPlannerFailed is the turn-level failure surfaced when planning fails.
	ErrPlannerFailed = errors.New("planner failed")

	// ErrInvalidSession indicates an unknown session id.
	ErrInvalidSession = errors.New("invalid session_id")
)

// StatusFor maps an error to the status code reported at the boundary.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNoExtractableText),
		errors.Is(err, ErrExtraction),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrEmbedding):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidSession), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExternalService),
		errors.Is(err, ErrPlannerSchema),
		errors.Is(err, ErrPlannerFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrLLMUnavailable), errors.Is(err, ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
