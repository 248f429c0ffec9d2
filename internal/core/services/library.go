package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// Ensure LibraryService implements the interface.
var _ driving.Library = (*LibraryService)(nil)

// libraryKey is the key the whole collection is stored under. Books are
// kept as one ordered JSON array so every operation is a single atomic
// read-modify-write against the key-value store.
const libraryKey = "library"

// LibraryService manages the stored book collection.
type LibraryService struct {
	store driven.KeyValueStore
}

// NewLibraryService creates a new library service.
func NewLibraryService(store driven.KeyValueStore) *LibraryService {
	return &LibraryService{
		store: store,
	}
}

// Add stores a new book under a fresh unique id.
func (s *LibraryService) Add(ctx context.Context, book domain.Book) (*domain.Book, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	books, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	book.ID = uuid.NewString()
	book.AddedAt = time.Now().UTC()
	book.LastSentChunk = highestSentIndex(book.Chunks)

	books = append(books, book)
	if err := s.save(ctx, books); err != nil {
		return nil, err
	}

	return &book, nil
}

// Get retrieves a book by id.
func (s *LibraryService) Get(ctx context.Context, id string) (*domain.Book, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	books, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, fmt.Errorf("book %s: %w", id, domain.ErrNotFound)
}

// Update merges the given fields into the stored record and persists.
func (s *LibraryService) Update(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	books, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range books {
		if books[i].ID != id {
			continue
		}

		if update.Title != nil {
			books[i].Title = *update.Title
		}
		if update.Chunks != nil {
			books[i].Chunks = update.Chunks
		}
		if update.LastSentChunk != nil {
			books[i].LastSentChunk = *update.LastSentChunk
		}

		if err := s.save(ctx, books); err != nil {
			return nil, err
		}
		return &books[i], nil
	}

	return nil, fmt.Errorf("book %s: %w", id, domain.ErrNotFound)
}

// List returns all books in insertion order.
func (s *LibraryService) List(ctx context.Context) ([]domain.Book, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.load(ctx)
}

// Rename updates the title.
func (s *LibraryService) Rename(ctx context.Context, id, title string) (*domain.Book, error) {
	if title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", domain.ErrInvalidInput)
	}
	return s.Update(ctx, id, domain.BookUpdate{Title: &title})
}

// MarkChunkSent sets a chunk's status to sent and raises the book's
// high-water mark. The mark never decreases.
func (s *LibraryService) MarkChunkSent(ctx context.Context, id string, chunkIndex int) (*domain.Book, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	books, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range books {
		if books[i].ID != id {
			continue
		}

		if chunkIndex < 0 || chunkIndex >= len(books[i].Chunks) {
			return nil, fmt.Errorf("chunk index %d out of range: %w", chunkIndex, domain.ErrInvalidInput)
		}

		books[i].Chunks[chunkIndex].Status = domain.ChunkStatusSent
		if chunkIndex > books[i].LastSentChunk {
			books[i].LastSentChunk = chunkIndex
		}

		if err := s.save(ctx, books); err != nil {
			return nil, err
		}
		return &books[i], nil
	}

	return nil, fmt.Errorf("book %s: %w", id, domain.ErrNotFound)
}

// highestSentIndex returns the highest index with status sent, or -1.
func highestSentIndex(chunks []domain.Chunk) int {
	for i := len(chunks) - 1; i >= 0; i-- {
		if chunks[i].Status == domain.ChunkStatusSent {
			return i
		}
	}
	return -1
}

// load reads the whole collection. A missing key is an empty library.
func (s *LibraryService) load(ctx context.Context) ([]domain.Book, error) {
	values, err := s.store.Get(ctx, []string{libraryKey})
	if err != nil {
		return nil, err
	}

	raw, ok := values[libraryKey]
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var books []domain.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("decoding library: %w", err)
	}
	return books, nil
}

// save writes the whole collection back.
func (s *LibraryService) save(ctx context.Context, books []domain.Book) error {
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encoding library: %w", err)
	}
	return s.store.Set(ctx, map[string][]byte{libraryKey: raw})
}
