package tui

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// mockLibrary implements driving.Library for app tests.
type mockLibrary struct {
	ListFunc func(ctx context.Context) ([]domain.Book, error)
	GetFunc  func(ctx context.Context, id string) (*domain.Book, error)
}

func (m *mockLibrary) Add(_ context.Context, _ domain.Book) (*domain.Book, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockLibrary) Get(ctx context.Context, id string) (*domain.Book, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibrary) Update(_ context.Context, _ string, _ domain.BookUpdate) (*domain.Book, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockLibrary) List(ctx context.Context) ([]domain.Book, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Book{}, nil
}

func (m *mockLibrary) Rename(_ context.Context, _, _ string) (*domain.Book, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockLibrary) MarkChunkSent(_ context.Context, _ string, _ int) (*domain.Book, error) {
	return nil, domain.ErrNotImplemented
}

// mockDelivery implements driving.Delivery for app tests.
type mockDelivery struct {
	SendNextFunc func(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error)
	StateFunc    func(ctx context.Context, bookID string) (*domain.DeliverySnapshot, error)
}

func (m *mockDelivery) SendNext(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error) {
	if m.SendNextFunc != nil {
		return m.SendNextFunc(ctx, bookID)
	}
	return nil, domain.ErrNothingToSend
}

func (m *mockDelivery) SendAll(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return nil, domain.ErrNothingToSend
}

func (m *mockDelivery) ReplyObserved(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return nil, nil
}

func (m *mockDelivery) Pause(_ context.Context, _ string) error {
	return nil
}

func (m *mockDelivery) Retry(_ context.Context, _ string, _ int) (*domain.DeliveryReceipt, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDelivery) State(ctx context.Context, bookID string) (*domain.DeliverySnapshot, error) {
	if m.StateFunc != nil {
		return m.StateFunc(ctx, bookID)
	}
	return &domain.DeliverySnapshot{BookID: bookID, State: domain.DeliveryIdle, NextIndex: -1}, nil
}

func (m *mockDelivery) History(_ context.Context, _ string) ([]domain.DeliveryReceipt, error) {
	return []domain.DeliveryReceipt{}, nil
}
