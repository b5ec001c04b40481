// Package domain defines the core business entities for Zenji.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded slice of page text tagged with provenance
//   - IngestResult: The outcome of ingesting one document or a folder
//   - SessionState: The per-conversation intake record
//   - DialogAction: The planner's structured proposal for one turn
//   - Answer: A retrieval-augmented reply with citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
