package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookfeed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// --- Mock implementations for delivery testing ---

// deliveryMockPublisher implements driven.Publisher.
type deliveryMockPublisher struct {
	mu     sync.Mutex
	url    string
	err    error
	titles []string
}

func (p *deliveryMockPublisher) Name() domain.PasteService {
	return domain.PasteServiceDpaste
}

func (p *deliveryMockPublisher) Publish(_ context.Context, title, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.titles = append(p.titles, title)
	return p.url, nil
}

func (p *deliveryMockPublisher) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// deliveryMockRegistry implements driven.PublisherRegistry.
type deliveryMockRegistry struct {
	publisher driven.Publisher
}

func (r *deliveryMockRegistry) Publisher(_ domain.PasteService) (driven.Publisher, error) {
	if r.publisher == nil {
		return nil, domain.ErrInvalidInput
	}
	return r.publisher, nil
}

// deliveryMockChannel implements driven.ChatChannel. When started and
// block are set, Deliver signals entry and waits for release, which
// lets tests hold a dispatch in flight.
type deliveryMockChannel struct {
	mu        sync.Mutex
	delivered []string
	err       error
	started   chan struct{}
	block     chan struct{}
	replies   chan struct{}
}

func newDeliveryMockChannel() *deliveryMockChannel {
	return &deliveryMockChannel{replies: make(chan struct{})}
}

func (c *deliveryMockChannel) Deliver(_ context.Context, message string) error {
	c.mu.Lock()
	if c.started != nil {
		close(c.started)
		c.started = nil
	}
	block := c.block
	c.mu.Unlock()

	if block != nil {
		<-block
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.delivered = append(c.delivered, message)
	return nil
}

func (c *deliveryMockChannel) Replies() <-chan struct{} {
	return c.replies
}

func (c *deliveryMockChannel) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *deliveryMockChannel) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.delivered...)
}

// deliveryFixture wires a delivery service over an in-memory library
// with one book.
type deliveryFixture struct {
	service   *DeliveryService
	library   *LibraryService
	publisher *deliveryMockPublisher
	channel   *deliveryMockChannel
	logStore  *memory.DeliveryLogStore
	bookID    string
}

func newDeliveryFixture(t *testing.T, chunkCount int) *deliveryFixture {
	t.Helper()

	library := NewLibraryService(memory.NewKeyValueStore())
	book, err := library.Add(context.Background(), domain.Book{
		Title:  "Test Book",
		Chunks: pendingChunks(chunkCount),
	})
	require.NoError(t, err)

	publisher := &deliveryMockPublisher{url: "https://dpaste.org/abc"}
	channel := newDeliveryMockChannel()
	logStore := memory.NewDeliveryLogStore()

	service := NewDeliveryService(library, nil, &deliveryMockRegistry{publisher: publisher}, channel, logStore)

	return &deliveryFixture{
		service:   service,
		library:   library,
		publisher: publisher,
		channel:   channel,
		logStore:  logStore,
		bookID:    book.ID,
	}
}

// --- Tests ---

func TestNewDeliveryService(t *testing.T) {
	service := NewDeliveryService(nil, nil, nil, nil, nil)
	require.NotNil(t, service)
	assert.NotNil(t, service.sessions)
}

func TestDeliveryService_SendNext_Success(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	receipt, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)

	assert.Equal(t, f.bookID, receipt.BookID)
	assert.Equal(t, 0, receipt.ChunkIndex)
	assert.Equal(t, "https://dpaste.org/abc", receipt.PasteURL)
	assert.Contains(t, receipt.Message, "https://dpaste.org/abc")
	assert.False(t, receipt.DeliveredAt.IsZero())

	// The chunk is marked sent and the high-water mark raised
	book, err := f.library.Get(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkStatusSent, book.Chunks[0].Status)
	assert.Equal(t, 0, book.LastSentChunk)

	// The sequencer now awaits a reply
	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverySending, snapshot.State)
	assert.False(t, snapshot.InFlight)

	require.Len(t, f.channel.messages(), 1)
}

func TestDeliveryService_SendNext_PicksLowestPending(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	_, err := f.library.MarkChunkSent(ctx, f.bookID, 0)
	require.NoError(t, err)

	receipt, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.ChunkIndex)
}

func TestDeliveryService_SendNext_NothingToSend(t *testing.T) {
	f := newDeliveryFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.library.MarkChunkSent(ctx, f.bookID, i)
		require.NoError(t, err)
	}

	_, err := f.service.SendNext(ctx, f.bookID)
	assert.ErrorIs(t, err, domain.ErrNothingToSend)

	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDone, snapshot.State)
	assert.False(t, snapshot.AutoAdvance)
	assert.Equal(t, -1, snapshot.NextIndex)
}

func TestDeliveryService_SendNext_BookNotFound(t *testing.T) {
	f := newDeliveryFixture(t, 1)

	_, err := f.service.SendNext(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The dispatch slot is released on the error path
	_, err = f.service.SendNext(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeliveryService_SendNext_PublishFailure(t *testing.T) {
	f := newDeliveryFixture(t, 2)
	ctx := context.Background()
	f.publisher.setErr(errors.New("paste service down"))

	_, err := f.service.SendAll(ctx, f.bookID)
	require.Error(t, err)

	// The chunk stays pending and nothing was marked
	book, err := f.library.Get(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkStatusPending, book.Chunks[0].Status)
	assert.Equal(t, -1, book.LastSentChunk)

	// Auto-advance is halted so the failure surfaces
	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryIdle, snapshot.State)
	assert.False(t, snapshot.AutoAdvance)
	assert.False(t, snapshot.InFlight)

	assert.Empty(t, f.channel.messages())
}

func TestDeliveryService_SendNext_DeliverFailure(t *testing.T) {
	f := newDeliveryFixture(t, 2)
	ctx := context.Background()
	f.channel.setErr(errors.New("chat composer missing"))

	_, err := f.service.SendNext(ctx, f.bookID)
	require.Error(t, err)

	// Published but not delivered still counts as a failed dispatch
	book, err := f.library.Get(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkStatusPending, book.Chunks[0].Status)
	assert.Equal(t, -1, book.LastSentChunk)

	// A later retry can succeed
	f.channel.setErr(nil)
	receipt, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.ChunkIndex)
}

func TestDeliveryService_SendNext_SingleFlight(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	f.channel.started = make(chan struct{})
	f.channel.block = make(chan struct{})
	started := f.channel.started

	done := make(chan error, 1)
	go func() {
		_, err := f.service.SendNext(ctx, f.bookID)
		done <- err
	}()

	<-started

	// Second dispatch while the first is still executing
	_, err := f.service.SendNext(ctx, f.bookID)
	assert.ErrorIs(t, err, domain.ErrDeliveryInFlight)

	close(f.channel.block)
	require.NoError(t, <-done)

	// Slot is free again once the dispatch completed
	f.channel.block = nil
	receipt, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.ChunkIndex)
}

func TestDeliveryService_SendAll_AutoAdvance(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	receipt, err := f.service.SendAll(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.ChunkIndex)

	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverySending, snapshot.State)
	assert.True(t, snapshot.AutoAdvance)

	// Each observed reply advances by exactly one chunk
	receipt, err = f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, 1, receipt.ChunkIndex)

	receipt, err = f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, 2, receipt.ChunkIndex)

	// The reply after the last chunk parks the book in Done
	receipt, err = f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	snapshot, err = f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDone, snapshot.State)
	assert.False(t, snapshot.AutoAdvance)
	assert.Equal(t, 3, snapshot.SentCount)
	assert.Equal(t, 2, snapshot.LastSentChunk)

	assert.Len(t, f.channel.messages(), 3)
}

func TestDeliveryService_ReplyObserved_ManualGoesIdle(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	_, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)

	receipt, err := f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	// Without auto-advance the reply only settles the state
	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryIdle, snapshot.State)
	assert.Equal(t, 1, snapshot.SentCount)
	assert.Len(t, f.channel.messages(), 1)
}

func TestDeliveryService_ReplyObserved_IgnoredWhenIdle(t *testing.T) {
	f := newDeliveryFixture(t, 2)
	ctx := context.Background()

	receipt, err := f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryIdle, snapshot.State)
	assert.Empty(t, f.channel.messages())
}

func TestDeliveryService_Pause_DisablesAutoAdvance(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	_, err := f.service.SendAll(ctx, f.bookID)
	require.NoError(t, err)

	require.NoError(t, f.service.Pause(ctx, f.bookID))

	// The next reply no longer advances
	receipt, err := f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryIdle, snapshot.State)
	assert.False(t, snapshot.AutoAdvance)
	assert.Equal(t, 1, snapshot.SentCount)
}

func TestDeliveryService_Retry_ResendsSentChunk(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	_, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)

	receipt, err := f.service.Retry(ctx, f.bookID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.ChunkIndex)

	assert.Len(t, f.channel.messages(), 2)
}

func TestDeliveryService_Retry_NeverLowersMark(t *testing.T) {
	f := newDeliveryFixture(t, 4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.library.MarkChunkSent(ctx, f.bookID, i)
		require.NoError(t, err)
	}

	_, err := f.service.Retry(ctx, f.bookID, 0)
	require.NoError(t, err)

	book, err := f.library.Get(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, book.LastSentChunk)
}

func TestDeliveryService_Retry_InvalidIndex(t *testing.T) {
	f := newDeliveryFixture(t, 2)

	_, err := f.service.Retry(context.Background(), f.bookID, 9)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// The dispatch slot is released on the error path
	_, err = f.service.SendNext(context.Background(), f.bookID)
	require.NoError(t, err)
}

func TestDeliveryService_Retry_FailureHaltsAutoAdvance(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	_, err := f.service.SendAll(ctx, f.bookID)
	require.NoError(t, err)

	f.publisher.setErr(errors.New("rate limited"))
	_, err = f.service.Retry(ctx, f.bookID, 1)
	require.Error(t, err)

	snapshot, err := f.service.State(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryIdle, snapshot.State)
	assert.False(t, snapshot.AutoAdvance)

	book, err := f.library.Get(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkStatusPending, book.Chunks[1].Status)
}

func TestDeliveryService_State_FreshBook(t *testing.T) {
	f := newDeliveryFixture(t, 3)

	snapshot, err := f.service.State(context.Background(), f.bookID)
	require.NoError(t, err)

	assert.Equal(t, domain.DeliveryIdle, snapshot.State)
	assert.False(t, snapshot.AutoAdvance)
	assert.False(t, snapshot.InFlight)
	assert.Equal(t, 0, snapshot.NextIndex)
	assert.Equal(t, 0, snapshot.SentCount)
	assert.Equal(t, 3, snapshot.TotalCount)
	assert.Equal(t, -1, snapshot.LastSentChunk)
}

func TestDeliveryService_History(t *testing.T) {
	f := newDeliveryFixture(t, 3)
	ctx := context.Background()

	_, err := f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)
	_, err = f.service.ReplyObserved(ctx, f.bookID)
	require.NoError(t, err)
	_, err = f.service.SendNext(ctx, f.bookID)
	require.NoError(t, err)

	receipts, err := f.service.History(ctx, f.bookID)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, 0, receipts[0].ChunkIndex)
	assert.Equal(t, 1, receipts[1].ChunkIndex)
}

func TestDeliveryService_History_NoLogStore(t *testing.T) {
	service := NewDeliveryService(NewLibraryService(memory.NewKeyValueStore()), nil, nil, nil, nil)

	_, err := service.History(context.Background(), "any")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestRenderMessage_DefaultFormat(t *testing.T) {
	book := &domain.Book{Title: "Moby Dick", Chunks: pendingChunks(12)}
	chunk := domain.Chunk{Index: 4, Chapter: "Chapter 2", ChapterIndex: 1}

	msg := renderMessage(domain.DefaultMessageFormat, book, chunk, "https://dpaste.org/xyz")

	assert.Contains(t, msg, `Part 5 of 12 from "Moby Dick"`)
	assert.Contains(t, msg, "Chapter 2, section 2")
	assert.True(t, strings.HasSuffix(msg, "https://dpaste.org/xyz"))
}

func TestRenderMessage_CustomFormat(t *testing.T) {
	book := &domain.Book{Title: "T", Chunks: pendingChunks(2)}
	chunk := domain.Chunk{Index: 0, Chapter: domain.DefaultChapter, ChapterIndex: 0}

	msg := renderMessage("{url} | {title} | {chunkIndex}/{chunkCount}", book, chunk, "u")

	assert.Equal(t, "u | T | 1/2", msg)
}
