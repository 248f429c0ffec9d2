package domain

import "time"

// ChunkStatus tracks whether a chunk has been delivered.
type ChunkStatus string

// Chunk delivery statuses.
const (
	// ChunkStatusPending means the chunk has not been delivered yet.
	ChunkStatusPending ChunkStatus = "pending"

	// ChunkStatusSent means the chunk was delivered successfully at least once.
	ChunkStatusSent ChunkStatus = "sent"
)

// IsValid returns true if the status is recognised.
func (s ChunkStatus) IsValid() bool {
	switch s {
	case ChunkStatusPending, ChunkStatusSent:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ChunkStatus) String() string {
	return string(s)
}

// DefaultChapter is the label given to text that precedes the first
// detected chapter heading.
const DefaultChapter = "Introduction"

// Chunk is a bounded slice of a book's text, independently deliverable.
// Content is fixed at creation; only Status mutates afterwards.
type Chunk struct {
	// Index is the 0-based position in the book-wide sequence.
	// Indices are contiguous starting at 0 across the whole book.
	Index int `json:"chunkIndex"`

	// Chapter is the label of the chapter this chunk belongs to.
	// Defaults to DefaultChapter when no heading precedes the text.
	Chapter string `json:"chapter"`

	// ChapterIndex is the 0-based position within the chapter.
	// It resets to 0 at the first chunk of each new chapter.
	ChapterIndex int `json:"chapterChunkIndex"`

	// Content is the trimmed text payload. Never empty.
	Content string `json:"content"`

	// Status tracks delivery of this chunk.
	Status ChunkStatus `json:"status"`
}

// Book is a loaded document plus its chunking and delivery state.
//
// A Book is created in one shot from a full text: chunking happens once,
// atomically. After creation only Title, chunk statuses and LastSentChunk
// mutate. Chunks are never reordered or removed.
type Book struct {
	// ID is the unique identifier, assigned at creation. Immutable.
	ID string `json:"id"`

	// Title is the display string. User-editable after creation.
	Title string `json:"title"`

	// SourceURL records where the text came from. Immutable.
	SourceURL string `json:"sourceUrl"`

	// Chunks is the ordered sequence produced by the chunker.
	// Fixed after creation; only Status fields mutate in place.
	Chunks []Chunk `json:"chunks"`

	// LastSentChunk is the highest chunk index marked sent.
	// Monotonically non-decreasing. -1 when nothing has been sent.
	LastSentChunk int `json:"lastSentChunk"`

	// AddedAt is when the book was added to the library.
	AddedAt time.Time `json:"addedAt"`
}

// NextPending returns the lowest-index chunk with status pending,
// or false when every chunk has been sent.
func (b *Book) NextPending() (Chunk, bool) {
	for _, c := range b.Chunks {
		if c.Status == ChunkStatusPending {
			return c, true
		}
	}
	return Chunk{}, false
}

// ChunkAt returns the chunk with the given index, or false when the
// index is out of range. Indices are contiguous, so position equals index.
func (b *Book) ChunkAt(index int) (Chunk, bool) {
	if index < 0 || index >= len(b.Chunks) {
		return Chunk{}, false
	}
	return b.Chunks[index], true
}

// SentCount returns the number of chunks marked sent.
func (b *Book) SentCount() int {
	n := 0
	for _, c := range b.Chunks {
		if c.Status == ChunkStatusSent {
			n++
		}
	}
	return n
}

// PendingCount returns the number of chunks not yet sent.
func (b *Book) PendingCount() int {
	return len(b.Chunks) - b.SentCount()
}

// Chapters returns the distinct chapter labels in reading order.
func (b *Book) Chapters() []string {
	var labels []string
	for _, c := range b.Chunks {
		if len(labels) == 0 || labels[len(labels)-1] != c.Chapter {
			labels = append(labels, c.Chapter)
		}
	}
	return labels
}

// BookUpdate carries a partial update for a stored book.
//
// The merge is shallow at the top level: nil pointers/slices leave the
// stored value untouched, non-nil values replace it wholesale. In
// particular a non-nil Chunks slice replaces the entire chunk sequence.
type BookUpdate struct {
	// Title replaces the stored title when non-nil.
	Title *string

	// Chunks replaces the stored chunk sequence wholesale when non-nil.
	Chunks []Chunk

	// LastSentChunk replaces the stored value when non-nil.
	LastSentChunk *int
}
