package driven

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// DeliveryLogStore keeps a history of confirmed dispatches so paste
// URLs can be found again later.
type DeliveryLogStore interface {
	// Record appends a receipt to the log.
	Record(ctx context.Context, receipt domain.DeliveryReceipt) error

	// ListByBook returns all receipts for a book, oldest first.
	ListByBook(ctx context.Context, bookID string) ([]domain.DeliveryReceipt, error)
}
