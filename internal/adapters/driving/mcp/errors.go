// Package mcp provides an MCP (Model Context Protocol) server adapter for
// bookfeed. It lets AI assistants browse the library and drive the chunk
// delivery sequence.
package mcp

import "errors"

// Required-port errors returned by Ports.Validate.
var (
	// ErrMissingLibraryService is returned when the library service is not provided.
	ErrMissingLibraryService = errors.New("mcp: library service is required")

	// ErrMissingDeliveryService is returned when the delivery service is not provided.
	ErrMissingDeliveryService = errors.New("mcp: delivery service is required")
)
