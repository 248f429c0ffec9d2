package driving

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// Delivery drives the per-book send sequence.
//
// A dispatch publishes the chunk content to the configured paste
// service, delivers the rendered message over the chat channel, and
// only then marks the chunk sent. At most one dispatch per book may be
// in flight at a time; a second call while one is executing fails with
// domain.ErrDeliveryInFlight.
type Delivery interface {
	// SendNext dispatches the lowest-index pending chunk. Returns
	// domain.ErrNothingToSend when no pending chunk remains (the book
	// is then Done). On dispatch failure the chunk stays pending,
	// auto-advance is halted and the error is surfaced for manual
	// retry.
	SendNext(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error)

	// SendAll enables auto-advance and dispatches the first pending
	// chunk. Subsequent chunks follow one reply-observed signal at a
	// time.
	SendAll(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error)

	// ReplyObserved feeds the external "a reply arrived" signal into
	// the sequencer. With auto-advance enabled it immediately
	// dispatches the next pending chunk and returns its receipt; the
	// receipt is nil when the signal only caused a state transition.
	ReplyObserved(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error)

	// Pause disables auto-advance. An in-flight dispatch still
	// completes normally; no further chunk is auto-selected.
	Pause(ctx context.Context, bookID string) error

	// Retry re-runs the dispatch path for one specific chunk,
	// regardless of its status or sequence position. A retry never
	// lowers the book's LastSentChunk mark.
	Retry(ctx context.Context, bookID string, chunkIndex int) (*domain.DeliveryReceipt, error)

	// State reports the book's sequencer state and progress.
	State(ctx context.Context, bookID string) (*domain.DeliverySnapshot, error)

	// History returns the book's dispatch receipts, oldest first.
	History(ctx context.Context, bookID string) ([]domain.DeliveryReceipt, error)
}
