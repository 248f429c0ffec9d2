// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLibrary is the book list view.
	ViewLibrary ViewType = iota
	// ViewDetail shows one book and its chunks.
	ViewDetail
	// ViewDelivery drives the send flow for one book.
	ViewDelivery
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLibrary:
		return "library"
	case ViewDetail:
		return "detail"
	case ViewDelivery:
		return "delivery"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// BooksLoaded carries the library contents.
type BooksLoaded struct {
	Books []domain.Book
	Err   error
}

// BookSelected signals a book was chosen from the library list.
type BookSelected struct {
	Book domain.Book
}

// BookLoaded carries a freshly loaded book for the detail view.
type BookLoaded struct {
	Book *domain.Book
	Err  error
}

// BookAdded signals an ingest attempt finished.
type BookAdded struct {
	Book *domain.Book
	Err  error
}

// DispatchDone signals a send, retry, or reply-advance attempt
// finished. Receipt is nil when nothing was dispatched.
type DispatchDone struct {
	Receipt *domain.DeliveryReceipt
	Err     error
}

// SnapshotLoaded carries the delivery progress for a book.
type SnapshotLoaded struct {
	Snapshot *domain.DeliverySnapshot
	Err      error
}

// DeliveryPaused signals auto-advance was switched off.
type DeliveryPaused struct {
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings domain.AppSettings
	Err      error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
