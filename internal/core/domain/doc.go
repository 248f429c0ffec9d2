// Package domain defines the core business entities for Bookfeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Book: A loaded document plus its chunking and delivery state
//   - Chunk: A bounded, independently deliverable slice of a book's text
//   - RawDocument: Opaque bytes from a fetcher or the filesystem
//   - ParsedDocument: Title and plain text after parsing
//   - AppSettings: User-facing configuration
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
