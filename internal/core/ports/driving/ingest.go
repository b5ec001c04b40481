package driving

import (
	"context"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// IngestService adds documents to the vector index.
type IngestService interface {
	// IngestDocument chunks, embeds, deduplicates and upserts one document.
	// The result always carries the boundary status. An all-duplicates run is
	// a success with zero accepted chunks; every other non-200 outcome also
	// returns an error.
	IngestDocument(ctx context.Context, raw []byte, filename string) (domain.IngestResult, error)

	// IngestFolder ingests every supported document under path, recursively.
	// Per-document failures are logged and skipped; a path that cannot be
	// enumerated fails the call.
	IngestFolder(ctx context.Context, path string) (domain.IngestResult, error)

	// Supports reports whether a file name can be ingested.
	Supports(filename string) bool
}

// FolderWatcher ingests documents as they appear in a folder.
type FolderWatcher interface {
	// Watch blocks until ctx is cancelled, ingesting created or modified files.
	// Each result is passed to onResult when it is non-nil.
	Watch(ctx context.Context, path string, onResult func(domain.IngestResult, error)) error
}
