package mcp

import (
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions from the index.
	Ask driving.AskService

	// Ingest adds folders of documents. Optional.
	Ingest driving.IngestService

	// Dialog runs intake sessions. Optional.
	Dialog driving.DialogService

	// Stats backs the stats resource. Optional.
	Stats driving.StatsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
