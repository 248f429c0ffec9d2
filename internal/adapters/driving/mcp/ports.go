package mcp

import (
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library manages the stored books.
	Library driving.Library

	// Delivery drives the chunk send flow.
	Delivery driving.Delivery

	// Ingest adds new books. Optional; without it the add_book tool
	// reports an error.
	Ingest driving.Ingest

	// Settings reads and writes application settings. Optional;
	// without it the settings tools report defaults read-only.
	Settings driving.Settings
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Delivery == nil {
		return ErrMissingDeliveryService
	}
	// Ingest and Settings are optional.
	return nil
}
