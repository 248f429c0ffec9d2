package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/views/delivery"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/views/detail"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/views/library"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// libraryView is the book list view.
	libraryView *library.View

	// detailView shows one book and its chunks.
	detailView *detail.View

	// deliveryView drives the send flow.
	deliveryView *delivery.View

	// selectedBook tracks the book being viewed or delivered.
	selectedBook *domain.Book

	// currentView tracks which view is active.
	currentView messages.ViewType

	// helpReturn is the view the help screen goes back to.
	helpReturn messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		libraryView:  library.NewView(s, ports.Library, ports.Ingest),
		detailView:   detail.NewView(s, ports.Library, ports.Delivery),
		deliveryView: delivery.NewView(s, ports.Delivery, ports.Settings),
		currentView:  messages.ViewLibrary,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("bookfeed"),
		a.libraryView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Forward to all views for proper sizing
		a.libraryView.SetDimensions(msg.Width, msg.Height)
		a.detailView.SetDimensions(msg.Width, msg.Height)
		a.deliveryView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewLibrary:
			a.libraryView, cmd = a.libraryView.Update(msg)
			return a, cmd
		case messages.ViewDetail:
			a.detailView, cmd = a.detailView.Update(msg)
			return a, cmd
		case messages.ViewDelivery:
			a.deliveryView, cmd = a.deliveryView.Update(msg)
			return a, cmd
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = a.helpReturn
				return a, nil
			}
			return a, nil
		}
		return a, nil

	case messages.BookSelected:
		a.selectedBook = &msg.Book
		a.currentView = messages.ViewDetail
		return a, a.detailView.SetBook(msg.Book)

	case messages.BookLoaded:
		if msg.Err == nil && msg.Book != nil {
			a.selectedBook = msg.Book
		}
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a.changeView(msg.View)

	case messages.BooksLoaded, messages.BookAdded:
		a.libraryView, cmd = a.libraryView.Update(msg)
		return a, cmd

	case messages.SnapshotLoaded, messages.DeliveryPaused, messages.SettingsLoaded:
		a.deliveryView, cmd = a.deliveryView.Update(msg)
		return a, cmd

	case messages.DispatchDone:
		// The detail view issues retries; everything else originates in
		// the delivery view. Route by the active view.
		if a.currentView == messages.ViewDetail {
			a.detailView, cmd = a.detailView.Update(msg)
			return a, cmd
		}
		a.deliveryView, cmd = a.deliveryView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewLibrary:
			a.libraryView, cmd = a.libraryView.Update(msg)
		case messages.ViewDetail:
			a.detailView, cmd = a.detailView.Update(msg)
		case messages.ViewDelivery:
			a.deliveryView, cmd = a.deliveryView.Update(msg)
		case messages.ViewHelp:
			// Help view has no error display
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (spinner ticks, input blinks) to the
	// active view.
	switch a.currentView {
	case messages.ViewLibrary:
		a.libraryView, cmd = a.libraryView.Update(msg)
	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewDelivery:
		a.deliveryView, cmd = a.deliveryView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// changeView switches the active view, refreshing it where needed.
func (a *App) changeView(view messages.ViewType) (tea.Model, tea.Cmd) {
	switch view {
	case messages.ViewLibrary:
		a.currentView = view
		return a, a.libraryView.Init()

	case messages.ViewDetail:
		if a.selectedBook == nil {
			a.currentView = messages.ViewLibrary
			return a, a.libraryView.Init()
		}
		a.currentView = view
		return a, a.detailView.SetBook(*a.selectedBook)

	case messages.ViewDelivery:
		if a.selectedBook == nil {
			a.currentView = messages.ViewLibrary
			return a, a.libraryView.Init()
		}
		a.currentView = view
		return a, a.deliveryView.SetBook(*a.selectedBook)

	case messages.ViewHelp:
		a.helpReturn = a.currentView
		a.currentView = view
		return a, nil
	}

	a.currentView = view
	return a, nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewLibrary:
		return a.libraryView.View()
	case messages.ViewDetail:
		return a.detailView.View()
	case messages.ViewDelivery:
		return a.deliveryView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.libraryView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Library:
  j/k, ↑/↓    Navigate books
  enter       Open book
  n           Add a book (URL or file path)
  r           Reload
  q           Quit

Book detail:
  j/k, ↑/↓    Navigate chunks
  enter       Open delivery view
  y           Retry the selected sent chunk

Delivery:
  s           Send next chunk
  a           Send all (advance on replies)
  r           Mark reply observed
  p           Pause auto-advance
  y           Retry the last sent chunk

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SelectedBook returns the book being viewed, if any.
func (a *App) SelectedBook() *domain.Book {
	return a.selectedBook
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.libraryView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
	a.deliveryView.SetDimensions(width, height)
}
