package driving

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// Library manages the stored book collection.
//
// Every operation is a single atomic read-modify-write of the whole
// collection. Callers must not issue overlapping updates against the
// same book id.
type Library interface {
	// Add stores a new book. A fresh unique id is assigned internally;
	// any id on the input is ignored. Returns the stored record.
	Add(ctx context.Context, book domain.Book) (*domain.Book, error)

	// Get retrieves a book by id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Book, error)

	// Update merges the given fields into the stored record (shallow,
	// top level only; a non-nil chunk slice replaces the chunks
	// wholesale) and persists. Returns the updated record, or
	// domain.ErrNotFound when the id is absent.
	Update(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error)

	// List returns all books in insertion order.
	List(ctx context.Context) ([]domain.Book, error)

	// Rename updates the title, the one user-editable field.
	Rename(ctx context.Context, id, title string) (*domain.Book, error)

	// MarkChunkSent sets the chunk's status to sent and raises the
	// book's LastSentChunk high-water mark if the index exceeds it.
	// The mark never decreases. Performed as one atomic
	// read-modify-write like every other operation.
	MarkChunkSent(ctx context.Context, id string, chunkIndex int) (*domain.Book, error)
}
