// Package tui provides an interactive terminal user interface for bookfeed.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library manages the stored books.
	Library driving.Library

	// Delivery drives the chunk send flow.
	Delivery driving.Delivery

	// Ingest adds new books. Optional; without it the add-book prompt
	// reports an error instead of ingesting.
	Ingest driving.Ingest

	// Settings reads application settings. Optional; used for display
	// only.
	Settings driving.Settings
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	library driving.Library,
	delivery driving.Delivery,
	ingest driving.Ingest,
	settings driving.Settings,
) *Ports {
	return &Ports{
		Library:  library,
		Delivery: delivery,
		Ingest:   ingest,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Delivery == nil {
		return ErrMissingDeliveryService
	}
	return nil
}
