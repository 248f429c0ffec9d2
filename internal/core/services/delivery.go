package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
	"github.com/custodia-labs/bookfeed/internal/logger"
)

// Ensure DeliveryService implements the interface.
var _ driving.Delivery = (*DeliveryService)(nil)

// deliverySession tracks one book's sequencer state. Sessions live in
// memory for the lifetime of the process; chunk statuses and the
// high-water mark are the persistent record.
type deliverySession struct {
	state       domain.DeliveryState
	autoAdvance bool
	inFlight    bool
}

// DeliveryService drives the per-book send sequence.
type DeliveryService struct {
	library    driving.Library
	settings   driving.Settings
	publishers driven.PublisherRegistry
	channel    driven.ChatChannel
	logStore   driven.DeliveryLogStore

	// Session tracking
	mu       sync.Mutex
	sessions map[string]*deliverySession
}

// NewDeliveryService creates a new delivery service. The logStore is
// optional; when nil, dispatches are not recorded and History is
// unavailable.
func NewDeliveryService(
	library driving.Library,
	settings driving.Settings,
	publishers driven.PublisherRegistry,
	channel driven.ChatChannel,
	logStore driven.DeliveryLogStore,
) *DeliveryService {
	return &DeliveryService{
		library:    library,
		settings:   settings,
		publishers: publishers,
		channel:    channel,
		logStore:   logStore,
		sessions:   make(map[string]*deliverySession),
	}
}

// SendNext dispatches the lowest-index pending chunk of the book.
func (s *DeliveryService) SendNext(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error) {
	if s.library == nil || s.publishers == nil || s.channel == nil {
		return nil, domain.ErrNotImplemented
	}

	// 1. Reserve the per-book dispatch slot
	if err := s.reserve(bookID); err != nil {
		return nil, err
	}

	// 2. Pick the lowest pending chunk
	book, err := s.library.Get(ctx, bookID)
	if err != nil {
		s.clearInFlight(bookID)
		return nil, err
	}

	chunk, ok := book.NextPending()
	if !ok {
		s.settle(bookID, domain.DeliveryDone, true)
		return nil, fmt.Errorf("book %s: %w", bookID, domain.ErrNothingToSend)
	}

	// 3. Dispatch it
	s.setState(bookID, domain.DeliverySending)

	receipt, err := s.dispatch(ctx, book, chunk)
	if err != nil {
		// The chunk stays pending; auto-advance is halted so the
		// failure surfaces instead of being retried in a loop.
		s.settle(bookID, domain.DeliveryIdle, true)
		return nil, err
	}

	// 4. Stay in Sending until a reply is observed
	s.settle(bookID, domain.DeliverySending, false)
	return receipt, nil
}

// SendAll enables auto-advance and dispatches the first pending chunk.
func (s *DeliveryService) SendAll(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error) {
	s.mu.Lock()
	s.sessionLocked(bookID).autoAdvance = true
	s.mu.Unlock()

	return s.SendNext(ctx, bookID)
}

// ReplyObserved feeds the external "a reply arrived" signal into the
// sequencer. Signals arriving outside the Sending state are ignored.
func (s *DeliveryService) ReplyObserved(ctx context.Context, bookID string) (*domain.DeliveryReceipt, error) {
	s.mu.Lock()
	sess := s.sessionLocked(bookID)
	if sess.inFlight || sess.state != domain.DeliverySending {
		s.mu.Unlock()
		return nil, nil
	}
	if !sess.autoAdvance {
		sess.state = domain.DeliveryIdle
		s.mu.Unlock()
		return nil, nil
	}
	sess.state = domain.DeliveryAwaitingNext
	s.mu.Unlock()

	logger.Debug("reply observed for book %s, advancing", bookID)

	receipt, err := s.SendNext(ctx, bookID)
	if errors.Is(err, domain.ErrNothingToSend) {
		// SendNext already parked the book in Done.
		return nil, nil
	}
	return receipt, err
}

// Pause disables auto-advance. An in-flight dispatch completes
// normally; the next reply simply stops the sequence.
func (s *DeliveryService) Pause(_ context.Context, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionLocked(bookID).autoAdvance = false
	return nil
}

// Retry re-runs the dispatch path for one specific chunk, regardless of
// its status or sequence position.
func (s *DeliveryService) Retry(ctx context.Context, bookID string, chunkIndex int) (*domain.DeliveryReceipt, error) {
	if s.library == nil || s.publishers == nil || s.channel == nil {
		return nil, domain.ErrNotImplemented
	}

	if err := s.reserve(bookID); err != nil {
		return nil, err
	}

	book, err := s.library.Get(ctx, bookID)
	if err != nil {
		s.clearInFlight(bookID)
		return nil, err
	}

	chunk, ok := book.ChunkAt(chunkIndex)
	if !ok {
		s.clearInFlight(bookID)
		return nil, fmt.Errorf("book %s has no chunk %d: %w", bookID, chunkIndex, domain.ErrInvalidInput)
	}

	s.setState(bookID, domain.DeliverySending)

	receipt, err := s.dispatch(ctx, book, chunk)
	if err != nil {
		s.settle(bookID, domain.DeliveryIdle, true)
		return nil, err
	}

	s.settle(bookID, domain.DeliverySending, false)
	return receipt, nil
}

// State reports the book's sequencer state and progress.
func (s *DeliveryService) State(ctx context.Context, bookID string) (*domain.DeliverySnapshot, error) {
	if s.library == nil {
		return nil, domain.ErrNotImplemented
	}

	book, err := s.library.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess := s.sessionLocked(bookID)
	snapshot := &domain.DeliverySnapshot{
		BookID:      bookID,
		State:       sess.state,
		AutoAdvance: sess.autoAdvance,
		InFlight:    sess.inFlight,
	}
	s.mu.Unlock()

	snapshot.NextIndex = -1
	if next, ok := book.NextPending(); ok {
		snapshot.NextIndex = next.Index
	}
	snapshot.SentCount = book.SentCount()
	snapshot.TotalCount = len(book.Chunks)
	snapshot.LastSentChunk = book.LastSentChunk

	return snapshot, nil
}

// History returns the book's dispatch receipts, oldest first.
func (s *DeliveryService) History(ctx context.Context, bookID string) ([]domain.DeliveryReceipt, error) {
	if s.logStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.logStore.ListByBook(ctx, bookID)
}

// dispatch publishes the chunk, delivers the rendered message and marks
// the chunk sent. The sent mark is written only after both external
// effects are confirmed.
func (s *DeliveryService) dispatch(ctx context.Context, book *domain.Book, chunk domain.Chunk) (*domain.DeliveryReceipt, error) {
	logger.Section(fmt.Sprintf("Dispatch chunk %d of %q", chunk.Index+1, book.Title))

	settings, err := s.appSettings(ctx)
	if err != nil {
		return nil, err
	}

	publisher, err := s.publishers.Publisher(settings.PasteService)
	if err != nil {
		return nil, err
	}

	pasteTitle := fmt.Sprintf("%s (part %d of %d)", book.Title, chunk.Index+1, len(book.Chunks))
	url, err := publisher.Publish(ctx, pasteTitle, chunk.Content)
	if err != nil {
		return nil, fmt.Errorf("publishing chunk %d: %w", chunk.Index, err)
	}

	message := renderMessage(settings.MessageFormat, book, chunk, url)
	if err := s.channel.Deliver(ctx, message); err != nil {
		return nil, fmt.Errorf("delivering chunk %d: %w", chunk.Index, err)
	}

	if _, err := s.library.MarkChunkSent(ctx, book.ID, chunk.Index); err != nil {
		return nil, fmt.Errorf("recording chunk %d as sent: %w", chunk.Index, err)
	}

	receipt := &domain.DeliveryReceipt{
		BookID:      book.ID,
		ChunkIndex:  chunk.Index,
		Chapter:     chunk.Chapter,
		PasteURL:    url,
		Message:     message,
		DeliveredAt: time.Now().UTC(),
	}

	if s.logStore != nil {
		if err := s.logStore.Record(ctx, *receipt); err != nil {
			logger.Warn("Failed to record dispatch of chunk %d: %v", chunk.Index, err)
		}
	}

	logger.Info("Sent chunk %d/%d of %q", chunk.Index+1, len(book.Chunks), book.Title)
	return receipt, nil
}

// appSettings loads settings, falling back to defaults when no settings
// service is wired.
func (s *DeliveryService) appSettings(ctx context.Context) (domain.AppSettings, error) {
	if s.settings == nil {
		return domain.DefaultAppSettings(), nil
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// renderMessage fills the message template. Index placeholders render
// one-based for readability.
func renderMessage(format string, book *domain.Book, chunk domain.Chunk, url string) string {
	return strings.NewReplacer(
		domain.PlaceholderTitle, book.Title,
		domain.PlaceholderChapter, chunk.Chapter,
		domain.PlaceholderChapterChunkIndex, strconv.Itoa(chunk.ChapterIndex+1),
		domain.PlaceholderChunkIndex, strconv.Itoa(chunk.Index+1),
		domain.PlaceholderChunkCount, strconv.Itoa(len(book.Chunks)),
		domain.PlaceholderURL, url,
	).Replace(format)
}

// sessionLocked returns the book's session, creating it on first use.
// Callers must hold s.mu.
func (s *DeliveryService) sessionLocked(bookID string) *deliverySession {
	sess, ok := s.sessions[bookID]
	if !ok {
		sess = &deliverySession{state: domain.DeliveryIdle}
		s.sessions[bookID] = sess
	}
	return sess
}

// reserve claims the book's single dispatch slot.
func (s *DeliveryService) reserve(bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(bookID)
	if sess.inFlight {
		return fmt.Errorf("book %s: %w", bookID, domain.ErrDeliveryInFlight)
	}
	sess.inFlight = true
	return nil
}

// clearInFlight releases the dispatch slot without touching state.
func (s *DeliveryService) clearInFlight(bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionLocked(bookID).inFlight = false
}

// setState updates the session state while a dispatch is in flight.
func (s *DeliveryService) setState(bookID string, state domain.DeliveryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionLocked(bookID).state = state
}

// settle releases the dispatch slot and records the outcome state. When
// halt is true, auto-advance is disabled as well.
func (s *DeliveryService) settle(bookID string, state domain.DeliveryState, halt bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(bookID)
	sess.inFlight = false
	sess.state = state
	if halt {
		sess.autoAdvance = false
	}
}
