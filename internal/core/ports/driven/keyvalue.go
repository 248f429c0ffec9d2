package driven

import "context"

// KeyValueStore is the external persistence API the library sits on.
// Implementations are simple keyed blob stores (SQLite, in-memory).
//
// The library performs a single read-modify-write of the whole
// collection per operation and adds no locking; storage errors propagate
// to the caller unmodified.
type KeyValueStore interface {
	// Get retrieves the values for the given keys. Missing keys are
	// absent from the result map, not an error.
	Get(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores all given values.
	Set(ctx context.Context, values map[string][]byte) error
}
