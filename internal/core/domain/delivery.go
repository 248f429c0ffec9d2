package domain

import "time"

// DeliveryState is the per-book sequencer state. It lives in memory for
// the duration of a session and is never persisted separately from the
// chunk statuses it derives from.
type DeliveryState string

// Delivery sequencer states.
const (
	// DeliveryIdle means no auto-advance is in progress.
	DeliveryIdle DeliveryState = "idle"

	// DeliverySending means a chunk has been dispatched and a
	// reply-observed signal is awaited.
	DeliverySending DeliveryState = "sending"

	// DeliveryAwaitingNext is the transient auto-advance state between
	// a confirmed send and the selection of the next pending chunk.
	DeliveryAwaitingNext DeliveryState = "awaiting_next"

	// DeliveryDone means no pending chunk remains.
	DeliveryDone DeliveryState = "done"
)

// IsValid returns true if the state is recognised.
func (s DeliveryState) IsValid() bool {
	switch s {
	case DeliveryIdle, DeliverySending, DeliveryAwaitingNext, DeliveryDone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DeliveryState) String() string {
	return string(s)
}

// Description returns a human-readable description of the state.
func (s DeliveryState) Description() string {
	switch s {
	case DeliveryIdle:
		return "Idle (nothing in progress)"
	case DeliverySending:
		return "Sending (awaiting reply)"
	case DeliveryAwaitingNext:
		return "Advancing to next chunk"
	case DeliveryDone:
		return "Done (all chunks sent)"
	default:
		return unknownDescription
	}
}

// DeliveryReceipt records one confirmed chunk dispatch.
type DeliveryReceipt struct {
	// BookID is the book the chunk belongs to.
	BookID string

	// ChunkIndex is the book-wide index of the dispatched chunk.
	ChunkIndex int

	// Chapter is the chunk's chapter label at dispatch time.
	Chapter string

	// PasteURL is the public URL the chunk content was published under.
	PasteURL string

	// Message is the rendered message delivered to the chat channel.
	Message string

	// DeliveredAt is when the dispatch was confirmed.
	DeliveredAt time.Time
}

// DeliverySnapshot is a point-in-time view of a book's delivery
// progress, for display surfaces.
type DeliverySnapshot struct {
	// BookID identifies the book.
	BookID string

	// State is the current sequencer state.
	State DeliveryState

	// AutoAdvance reports whether the send-all loop is enabled.
	AutoAdvance bool

	// InFlight reports whether a dispatch is currently executing.
	InFlight bool

	// NextIndex is the lowest pending chunk index, or -1 when none.
	NextIndex int

	// SentCount is the number of chunks marked sent.
	SentCount int

	// TotalCount is the total number of chunks.
	TotalCount int

	// LastSentChunk mirrors the book's high-water mark.
	LastSentChunk int
}
