package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// BookSummary is the tool-facing view of a stored book.
type BookSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	SourceURL     string `json:"source_url,omitempty"`
	ChunkCount    int    `json:"chunk_count"`
	SentCount     int    `json:"sent_count"`
	LastSentChunk int    `json:"last_sent_chunk"`
}

func summarise(b *domain.Book) BookSummary {
	return BookSummary{
		ID:            b.ID,
		Title:         b.Title,
		SourceURL:     b.SourceURL,
		ChunkCount:    len(b.Chunks),
		SentCount:     b.SentCount(),
		LastSentChunk: b.LastSentChunk,
	}
}

// ReceiptOutput is the tool-facing view of a dispatch receipt.
type ReceiptOutput struct {
	ChunkIndex int    `json:"chunk_index"`
	Chapter    string `json:"chapter"`
	PasteURL   string `json:"paste_url"`
	Message    string `json:"message"`
}

func receiptOutput(r *domain.DeliveryReceipt) *ReceiptOutput {
	if r == nil {
		return nil
	}
	return &ReceiptOutput{
		ChunkIndex: r.ChunkIndex,
		Chapter:    r.Chapter,
		PasteURL:   r.PasteURL,
		Message:    r.Message,
	}
}

// AddBookInput is the input schema for the add_book tool.
type AddBookInput struct {
	URL  string `json:"url,omitempty" jsonschema:"URL of the document to ingest (one of url or path is required)"`
	Path string `json:"path,omitempty" jsonschema:"local file path of the document to ingest"`
}

// AddBookOutput is the output schema for the add_book tool.
type AddBookOutput struct {
	Book BookSummary `json:"book"`
}

// ListBooksOutput is the output schema for the list_books tool.
type ListBooksOutput struct {
	Books []BookSummary `json:"books"`
	Count int           `json:"count"`
}

// GetBookInput is the input schema for the get_book tool.
type GetBookInput struct {
	BookID string `json:"book_id" jsonschema:"the id of the book to retrieve"`
}

// ChunkOutput is the tool-facing view of a chunk.
type ChunkOutput struct {
	Index        int    `json:"chunk_index"`
	Chapter      string `json:"chapter"`
	ChapterIndex int    `json:"chapter_chunk_index"`
	Status       string `json:"status"`
	Length       int    `json:"length"`
}

// GetBookOutput is the output schema for the get_book tool.
type GetBookOutput struct {
	Book   BookSummary   `json:"book"`
	Chunks []ChunkOutput `json:"chunks"`
}

// RenameBookInput is the input schema for the rename_book tool.
type RenameBookInput struct {
	BookID string `json:"book_id" jsonschema:"the id of the book to rename"`
	Title  string `json:"title" jsonschema:"the new display title"`
}

// RenameBookOutput is the output schema for the rename_book tool.
type RenameBookOutput struct {
	Book BookSummary `json:"book"`
}

// DeliveryInput identifies the book a delivery tool acts on.
type DeliveryInput struct {
	BookID string `json:"book_id" jsonschema:"the id of the book"`
}

// DeliveryOutput is the output schema for the delivery tools.
type DeliveryOutput struct {
	// Sent reports whether a chunk was dispatched by this call.
	Sent bool `json:"sent"`

	// Receipt describes the dispatched chunk when Sent is true.
	Receipt *ReceiptOutput `json:"receipt,omitempty"`

	// State is the sequencer state after the call.
	State string `json:"state"`

	// AutoAdvance reports whether the send-all loop is enabled.
	AutoAdvance bool `json:"auto_advance"`
}

// RetryChunkInput is the input schema for the retry_chunk tool.
type RetryChunkInput struct {
	BookID     string `json:"book_id" jsonschema:"the id of the book"`
	ChunkIndex int    `json:"chunk_index" jsonschema:"the 0-based index of the chunk to re-dispatch"`
}

// StateOutput is the output schema for the delivery_state tool.
type StateOutput struct {
	State         string `json:"state"`
	AutoAdvance   bool   `json:"auto_advance"`
	InFlight      bool   `json:"in_flight"`
	NextIndex     int    `json:"next_chunk_index"`
	SentCount     int    `json:"sent_count"`
	TotalCount    int    `json:"total_count"`
	LastSentChunk int    `json:"last_sent_chunk"`
}

// GetSettingsOutput is the output schema for the get_settings tool.
type GetSettingsOutput struct {
	ChunkSize     int    `json:"chunk_size"`
	PasteService  string `json:"paste_service"`
	MessageFormat string `json:"message_format"`
}

// SetSettingInput is the input schema for the set_setting tool.
type SetSettingInput struct {
	Key   string `json:"key" jsonschema:"the settings key, e.g. chunker.chunk_size or publish.service"`
	Value string `json:"value" jsonschema:"the new value"`
}

// SetSettingOutput is the output schema for the set_setting tool.
type SetSettingOutput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_book",
		Description: "Ingest a document from a URL or local file and add it to the library",
	}, s.handleAddBook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_books",
		Description: "List all books in the library with their delivery progress",
	}, s.handleListBooks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_book",
		Description: "Get one book including its per-chunk delivery status",
	}, s.handleGetBook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rename_book",
		Description: "Change a book's display title",
	}, s.handleRenameBook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_next",
		Description: "Dispatch the next pending chunk of a book (publish to the paste service and deliver the message)",
	}, s.handleSendNext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_all",
		Description: "Enable auto-advance and dispatch the first pending chunk; further chunks follow reply_observed signals",
	}, s.handleSendAll)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reply_observed",
		Description: "Signal that a chat reply to the last dispatched chunk was observed",
	}, s.handleReplyObserved)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pause_delivery",
		Description: "Disable auto-advance for a book; an in-flight dispatch still completes",
	}, s.handlePauseDelivery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retry_chunk",
		Description: "Re-dispatch one specific chunk regardless of its status",
	}, s.handleRetryChunk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delivery_state",
		Description: "Report a book's sequencer state and delivery progress",
	}, s.handleDeliveryState)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_settings",
		Description: "Read the current application settings",
	}, s.handleGetSettings)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_setting",
		Description: "Set one application settings value by key",
	}, s.handleSetSetting)
}

// handleAddBook handles the add_book tool invocation.
func (s *Server) handleAddBook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddBookInput,
) (*mcp.CallToolResult, AddBookOutput, error) {
	if s.ports.Ingest == nil {
		return nil, AddBookOutput{}, fmt.Errorf("adding books: %w", domain.ErrNotImplemented)
	}

	var (
		book *domain.Book
		err  error
	)
	switch {
	case input.URL != "":
		book, err = s.ports.Ingest.AddFromURL(ctx, input.URL)
	case input.Path != "":
		book, err = s.ports.Ingest.AddFromFile(ctx, input.Path)
	default:
		return nil, AddBookOutput{}, fmt.Errorf("either url or path is required: %w", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, AddBookOutput{}, err
	}

	return nil, AddBookOutput{Book: summarise(book)}, nil
}

// handleListBooks handles the list_books tool invocation.
func (s *Server) handleListBooks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListBooksOutput, error) {
	books, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListBooksOutput{}, err
	}

	output := ListBooksOutput{
		Books: make([]BookSummary, len(books)),
		Count: len(books),
	}
	for i := range books {
		output.Books[i] = summarise(&books[i])
	}

	return nil, output, nil
}

// handleGetBook handles the get_book tool invocation.
func (s *Server) handleGetBook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetBookInput,
) (*mcp.CallToolResult, GetBookOutput, error) {
	book, err := s.ports.Library.Get(ctx, input.BookID)
	if err != nil {
		return nil, GetBookOutput{}, err
	}

	output := GetBookOutput{
		Book:   summarise(book),
		Chunks: make([]ChunkOutput, len(book.Chunks)),
	}
	for i, c := range book.Chunks {
		output.Chunks[i] = ChunkOutput{
			Index:        c.Index,
			Chapter:      c.Chapter,
			ChapterIndex: c.ChapterIndex,
			Status:       c.Status.String(),
			Length:       len(c.Content),
		}
	}

	return nil, output, nil
}

// handleRenameBook handles the rename_book tool invocation.
func (s *Server) handleRenameBook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenameBookInput,
) (*mcp.CallToolResult, RenameBookOutput, error) {
	book, err := s.ports.Library.Rename(ctx, input.BookID, input.Title)
	if err != nil {
		return nil, RenameBookOutput{}, err
	}
	return nil, RenameBookOutput{Book: summarise(book)}, nil
}

// handleSendNext handles the send_next tool invocation.
func (s *Server) handleSendNext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeliveryInput,
) (*mcp.CallToolResult, DeliveryOutput, error) {
	receipt, err := s.ports.Delivery.SendNext(ctx, input.BookID)
	return s.deliveryResult(ctx, input.BookID, receipt, err)
}

// handleSendAll handles the send_all tool invocation.
func (s *Server) handleSendAll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeliveryInput,
) (*mcp.CallToolResult, DeliveryOutput, error) {
	receipt, err := s.ports.Delivery.SendAll(ctx, input.BookID)
	return s.deliveryResult(ctx, input.BookID, receipt, err)
}

// handleReplyObserved handles the reply_observed tool invocation.
func (s *Server) handleReplyObserved(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeliveryInput,
) (*mcp.CallToolResult, DeliveryOutput, error) {
	receipt, err := s.ports.Delivery.ReplyObserved(ctx, input.BookID)
	return s.deliveryResult(ctx, input.BookID, receipt, err)
}

// handlePauseDelivery handles the pause_delivery tool invocation.
func (s *Server) handlePauseDelivery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeliveryInput,
) (*mcp.CallToolResult, DeliveryOutput, error) {
	err := s.ports.Delivery.Pause(ctx, input.BookID)
	return s.deliveryResult(ctx, input.BookID, nil, err)
}

// handleRetryChunk handles the retry_chunk tool invocation.
func (s *Server) handleRetryChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetryChunkInput,
) (*mcp.CallToolResult, DeliveryOutput, error) {
	receipt, err := s.ports.Delivery.Retry(ctx, input.BookID, input.ChunkIndex)
	return s.deliveryResult(ctx, input.BookID, receipt, err)
}

// deliveryResult folds a sequencer call into the shared tool output.
// Exhaustion is a normal outcome for an assistant, not a tool error.
func (s *Server) deliveryResult(
	ctx context.Context,
	bookID string,
	receipt *domain.DeliveryReceipt,
	err error,
) (*mcp.CallToolResult, DeliveryOutput, error) {
	if err != nil && !errors.Is(err, domain.ErrNothingToSend) {
		return nil, DeliveryOutput{}, err
	}

	output := DeliveryOutput{
		Sent:    receipt != nil,
		Receipt: receiptOutput(receipt),
	}

	snapshot, stateErr := s.ports.Delivery.State(ctx, bookID)
	if stateErr != nil {
		return nil, DeliveryOutput{}, stateErr
	}
	output.State = snapshot.State.String()
	output.AutoAdvance = snapshot.AutoAdvance

	return nil, output, nil
}

// handleDeliveryState handles the delivery_state tool invocation.
func (s *Server) handleDeliveryState(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeliveryInput,
) (*mcp.CallToolResult, StateOutput, error) {
	snapshot, err := s.ports.Delivery.State(ctx, input.BookID)
	if err != nil {
		return nil, StateOutput{}, err
	}

	return nil, StateOutput{
		State:         snapshot.State.String(),
		AutoAdvance:   snapshot.AutoAdvance,
		InFlight:      snapshot.InFlight,
		NextIndex:     snapshot.NextIndex,
		SentCount:     snapshot.SentCount,
		TotalCount:    snapshot.TotalCount,
		LastSentChunk: snapshot.LastSentChunk,
	}, nil
}

// handleGetSettings handles the get_settings tool invocation.
func (s *Server) handleGetSettings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, GetSettingsOutput, error) {
	settings := domain.DefaultAppSettings()
	if s.ports.Settings != nil {
		var err error
		settings, err = s.ports.Settings.Settings(ctx)
		if err != nil {
			return nil, GetSettingsOutput{}, err
		}
	}

	return nil, GetSettingsOutput{
		ChunkSize:     settings.ChunkSize,
		PasteService:  settings.PasteService.String(),
		MessageFormat: settings.MessageFormat,
	}, nil
}

// handleSetSetting handles the set_setting tool invocation.
func (s *Server) handleSetSetting(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetSettingInput,
) (*mcp.CallToolResult, SetSettingOutput, error) {
	if s.ports.Settings == nil {
		return nil, SetSettingOutput{}, fmt.Errorf("changing settings: %w", domain.ErrNotImplemented)
	}

	if err := s.ports.Settings.Set(ctx, input.Key, input.Value); err != nil {
		return nil, SetSettingOutput{}, err
	}

	value := input.Value
	if s.ports.Settings.IsSecret(input.Key) {
		value = "(redacted)"
	}

	return nil, SetSettingOutput{Key: input.Key, Value: value}, nil
}
