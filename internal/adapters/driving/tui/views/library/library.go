// Package library provides the book list view component for the TUI.
package library

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// View is the book list view.
type View struct {
	styles  *styles.Styles
	library driving.Library
	ingest  driving.Ingest

	books        []domain.Book
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
	adding       bool
	sourceInput  *input.SourceInput
	statusLine   string
}

// NewView creates a new library view.
func NewView(s *styles.Styles, library driving.Library, ingest driving.Ingest) *View {
	return &View{
		styles:      s,
		library:     library,
		ingest:      ingest,
		books:       []domain.Book{},
		sourceInput: input.NewSourceInput(s),
	}
}

// Init initialises the view and loads the library.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadBooks()
}

// loadBooks returns a command that loads the library contents.
func (v *View) loadBooks() tea.Cmd {
	return func() tea.Msg {
		if v.library == nil {
			return messages.BooksLoaded{Err: fmt.Errorf("library service not available")}
		}

		books, err := v.library.List(context.Background())
		return messages.BooksLoaded{Books: books, Err: err}
	}
}

// addBook returns a command that ingests the given source.
func (v *View) addBook(source string) tea.Cmd {
	return func() tea.Msg {
		if v.ingest == nil {
			return messages.BookAdded{Err: fmt.Errorf("ingest service not available")}
		}

		var (
			book *domain.Book
			err  error
		)
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			book, err = v.ingest.AddFromURL(context.Background(), source)
		} else {
			book, err = v.ingest.AddFromFile(context.Background(), source)
		}
		return messages.BookAdded{Book: book, Err: err}
	}
}

// Update handles messages for the library view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		v.sourceInput.SetWidth(msg.Width)
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.handleAddKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.BooksLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.books = msg.Books
			v.err = nil
			if v.selected >= len(v.books) {
				v.selected = 0
				v.scrollOffset = 0
			}
		}
		return v, nil

	case messages.BookAdded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Book != nil {
			v.statusLine = fmt.Sprintf("Added %q (%d chunks)", msg.Book.Title, len(msg.Book.Chunks))
		}
		return v, v.loadBooks()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	if v.adding {
		var cmd tea.Cmd
		v.sourceInput, cmd = v.sourceInput.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.books)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if v.selected < len(v.books) {
			book := v.books[v.selected]
			return v, func() tea.Msg {
				return messages.BookSelected{Book: book}
			}
		}
	case "n":
		v.adding = true
		v.statusLine = ""
		v.sourceInput.Reset()
		return v, v.sourceInput.Focus()
	case "r":
		v.loading = true
		v.statusLine = ""
		return v, v.loadBooks()
	case "?":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case "q", "esc":
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	return v, nil
}

// handleAddKeyMsg handles key presses while the add prompt is open.
func (v *View) handleAddKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.adding = false
		v.sourceInput.Blur()
		return v, nil
	case tea.KeyEnter:
		source := strings.TrimSpace(v.sourceInput.Value())
		if source == "" {
			return v, nil
		}
		v.adding = false
		v.loading = true
		v.sourceInput.Blur()
		v.statusLine = fmt.Sprintf("Adding %s...", source)
		return v, v.addBook(source)
	default:
		var cmd tea.Cmd
		v.sourceInput, cmd = v.sourceInput.Update(msg)
		return v, cmd
	}
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, status, help, and padding
	reserved := 8
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the library view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Library (%d books)", len(v.books))
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.adding {
		b.WriteString(v.sourceInput.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] add  [esc] cancel"))
		return b.String()
	}

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading library..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.books) == 0 {
		b.WriteString(v.styles.Muted.Render("No books yet. Press 'n' to add one."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.books) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderBook(i, &v.books[i]))
		b.WriteString("\n")
	}

	if len(v.books) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.books)),
			len(v.books))))
	}

	if v.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.statusLine))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderBook renders a single book line.
func (v *View) renderBook(index int, book *domain.Book) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	progress := fmt.Sprintf("%d/%d", book.SentCount(), len(book.Chunks))

	title := book.Title
	maxTitleLen := v.width - len(progress) - 8
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	line := fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, progress)
	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
		v.styles.Muted.Render(progress)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] open  [n] add  [r] reload  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.sourceInput.SetWidth(width)
}

// Books returns the current list of books.
func (v *View) Books() []domain.Book {
	return v.books
}

// SelectedIndex returns the currently selected book index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedBook returns the currently selected book.
func (v *View) SelectedBook() *domain.Book {
	if v.selected < len(v.books) {
		return &v.books[v.selected]
	}
	return nil
}

// IsAdding returns true if the add prompt is open.
func (v *View) IsAdding() bool {
	return v.adding
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
