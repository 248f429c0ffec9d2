package mcp

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// mockLibrary is a mock implementation of driving.Library.
type mockLibrary struct {
	books []domain.Book
	book  *domain.Book
	err   error
}

func (m *mockLibrary) Add(_ context.Context, _ domain.Book) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockLibrary) Get(_ context.Context, _ string) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockLibrary) Update(_ context.Context, _ string, _ domain.BookUpdate) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockLibrary) List(_ context.Context) ([]domain.Book, error) {
	return m.books, m.err
}

func (m *mockLibrary) Rename(_ context.Context, _, title string) (*domain.Book, error) {
	if m.book != nil {
		m.book.Title = title
	}
	return m.book, m.err
}

func (m *mockLibrary) MarkChunkSent(_ context.Context, _ string, _ int) (*domain.Book, error) {
	return m.book, m.err
}

// mockDelivery is a mock implementation of driving.Delivery.
type mockDelivery struct {
	receipt  *domain.DeliveryReceipt
	snapshot *domain.DeliverySnapshot
	history  []domain.DeliveryReceipt
	err      error
	stateErr error

	paused bool
}

func (m *mockDelivery) SendNext(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return m.receipt, m.err
}

func (m *mockDelivery) SendAll(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return m.receipt, m.err
}

func (m *mockDelivery) ReplyObserved(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return m.receipt, m.err
}

func (m *mockDelivery) Pause(_ context.Context, _ string) error {
	m.paused = true
	return m.err
}

func (m *mockDelivery) Retry(_ context.Context, _ string, _ int) (*domain.DeliveryReceipt, error) {
	return m.receipt, m.err
}

func (m *mockDelivery) State(_ context.Context, bookID string) (*domain.DeliverySnapshot, error) {
	if m.stateErr != nil {
		return nil, m.stateErr
	}
	if m.snapshot != nil {
		return m.snapshot, nil
	}
	return &domain.DeliverySnapshot{BookID: bookID, State: domain.DeliveryIdle, NextIndex: -1}, nil
}

func (m *mockDelivery) History(_ context.Context, _ string) ([]domain.DeliveryReceipt, error) {
	return m.history, m.err
}

// mockIngest is a mock implementation of driving.Ingest.
type mockIngest struct {
	book *domain.Book
	err  error

	urls  []string
	paths []string
}

func (m *mockIngest) AddFromURL(_ context.Context, url string) (*domain.Book, error) {
	m.urls = append(m.urls, url)
	return m.book, m.err
}

func (m *mockIngest) AddFromFile(_ context.Context, path string) (*domain.Book, error) {
	m.paths = append(m.paths, path)
	return m.book, m.err
}

func (m *mockIngest) AddText(_ context.Context, _, _, _ string) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockIngest) AddDocument(_ context.Context, _ domain.RawDocument) (*domain.Book, error) {
	return m.book, m.err
}

// mockSettings is a mock implementation of driving.Settings.
type mockSettings struct {
	settings domain.AppSettings
	value    string
	token    string
	err      error

	set map[string]string
}

func (m *mockSettings) Settings(_ context.Context) (domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettings) Get(_ context.Context, _ string) (string, error) {
	return m.value, m.err
}

func (m *mockSettings) Set(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Reset(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSettings) Keys() []string {
	return nil
}

func (m *mockSettings) IsSecret(key string) bool {
	return len(key) > 6 && key[len(key)-6:] == ".token"
}

func (m *mockSettings) Token(_ context.Context, _ domain.PasteService) (string, error) {
	return m.token, m.err
}
