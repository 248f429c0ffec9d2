package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// --- Mock services wired into the package-level vars for tests ---

// mockLibrary implements driving.Library.
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
	if m.err != nil {
		return nil, m.err
	}
	if m.book != nil {
		m.book.Title = title
	}
	return m.book, nil
}

func (m *mockLibrary) MarkChunkSent(_ context.Context, _ string, _ int) (*domain.Book, error) {
	return m.book, m.err
}

// mockDelivery implements driving.Delivery.
type mockDelivery struct {
	receipt  *domain.DeliveryReceipt
	receipts []*domain.DeliveryReceipt
	snapshot *domain.DeliverySnapshot
	history  []domain.DeliveryReceipt
	err      error

	paused bool
	calls  int
}

// next pops the scripted receipt sequence, falling back to the single
// receipt field.
func (m *mockDelivery) next() (*domain.DeliveryReceipt, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.receipts) > 0 {
		r := m.receipts[0]
		m.receipts = m.receipts[1:]
		return r, nil
	}
	return m.receipt, nil
}

func (m *mockDelivery) SendNext(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return m.next()
}

func (m *mockDelivery) SendAll(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return m.next()
}

func (m *mockDelivery) ReplyObserved(_ context.Context, _ string) (*domain.DeliveryReceipt, error) {
	return m.next()
}

func (m *mockDelivery) Pause(_ context.Context, _ string) error {
	m.paused = true
	return nil
}

func (m *mockDelivery) Retry(_ context.Context, _ string, index int) (*domain.DeliveryReceipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.receipt != nil {
		r := *m.receipt
		r.ChunkIndex = index
		return &r, nil
	}
	return nil, nil
}

func (m *mockDelivery) State(_ context.Context, bookID string) (*domain.DeliverySnapshot, error) {
	if m.snapshot != nil {
		return m.snapshot, nil
	}
	return &domain.DeliverySnapshot{BookID: bookID, State: domain.DeliveryIdle, NextIndex: -1}, nil
}

func (m *mockDelivery) History(_ context.Context, _ string) ([]domain.DeliveryReceipt, error) {
	return m.history, m.err
}

// mockIngest implements driving.Ingest.
type mockIngest struct {
	book *domain.Book
	err  error

	urls  []string
	paths []string
	raws  []domain.RawDocument
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

func (m *mockIngest) AddDocument(_ context.Context, raw domain.RawDocument) (*domain.Book, error) {
	m.raws = append(m.raws, raw)
	return m.book, m.err
}

// mockSettings implements driving.Settings.
type mockSettings struct {
	settings domain.AppSettings
	values   map[string]string
	err      error
}

func newMockSettings() *mockSettings {
	return &mockSettings{
		settings: domain.DefaultAppSettings(),
		values:   make(map[string]string),
	}
}

func (m *mockSettings) Settings(_ context.Context) (domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettings) Get(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	for _, known := range m.Keys() {
		if known == key {
			return "", nil
		}
	}
	return "", domain.ErrNotFound
}

func (m *mockSettings) Set(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Reset(_ context.Context, key string) error {
	delete(m.values, key)
	return m.err
}

func (m *mockSettings) Keys() []string {
	return []string{
		"chunker.chunk_size",
		"publish.service",
		"delivery.message_format",
		"publish.gist.token",
		"publish.gdrive.token",
	}
}

func (m *mockSettings) IsSecret(key string) bool {
	return len(key) > 6 && key[len(key)-6:] == ".token"
}

func (m *mockSettings) Token(_ context.Context, _ domain.PasteService) (string, error) {
	return "", m.err
}

// mockChatChannel implements driven.ChatChannel.
type mockChatChannel struct {
	replies chan struct{}
}

func newMockChatChannel() *mockChatChannel {
	return &mockChatChannel{replies: make(chan struct{}, 1)}
}

func (c *mockChatChannel) Deliver(_ context.Context, _ string) error {
	return nil
}

func (c *mockChatChannel) Replies() <-chan struct{} {
	return c.replies
}

// mockFetcher implements driven.ContentFetcher.
type mockFetcher struct {
	raw domain.RawDocument
	err error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (domain.RawDocument, error) {
	m.raw.SourceURL = url
	return m.raw, m.err
}

// testServices wires mocks into the package-level service vars so
// ensureServices skips real adapter wiring, and restores the originals
// on cleanup.
type testServices struct {
	library  *mockLibrary
	delivery *mockDelivery
	ingest   *mockIngest
	settings *mockSettings
	channel  *mockChatChannel
	fetcher  *mockFetcher
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	s := &testServices{
		library:  &mockLibrary{},
		delivery: &mockDelivery{},
		ingest:   &mockIngest{},
		settings: newMockSettings(),
		channel:  newMockChatChannel(),
		fetcher:  &mockFetcher{},
	}

	origLibrary := libraryService
	origDelivery := deliveryService
	origIngest := ingestService
	origSettings := settingsService
	origChannel := chatChannel
	origFetcher := contentFetcher

	libraryService = s.library
	deliveryService = s.delivery
	ingestService = s.ingest
	settingsService = s.settings
	chatChannel = s.channel
	contentFetcher = s.fetcher

	t.Cleanup(func() {
		libraryService = origLibrary
		deliveryService = origDelivery
		ingestService = origIngest
		settingsService = origSettings
		chatChannel = origChannel
		contentFetcher = origFetcher
	})

	return s
}

// executeCommand runs the root command with the given args and returns
// the combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
