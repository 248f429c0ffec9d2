package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Ensure DeliveryLogStore implements the interface.
var _ driven.DeliveryLogStore = (*DeliveryLogStore)(nil)

// DeliveryLogStore is an in-memory implementation of driven.DeliveryLogStore.
type DeliveryLogStore struct {
	mu       sync.RWMutex
	receipts []domain.DeliveryReceipt
}

// NewDeliveryLogStore creates a new in-memory delivery log store.
func NewDeliveryLogStore() *DeliveryLogStore {
	return &DeliveryLogStore{}
}

// Record appends a receipt to the log.
func (s *DeliveryLogStore) Record(_ context.Context, receipt domain.DeliveryReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, receipt)
	return nil
}

// ListByBook returns all receipts for a book, oldest first.
func (s *DeliveryLogStore) ListByBook(_ context.Context, bookID string) ([]domain.DeliveryReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DeliveryReceipt
	for _, receipt := range s.receipts {
		if receipt.BookID == bookID {
			result = append(result, receipt)
		}
	}
	return result, nil
}
