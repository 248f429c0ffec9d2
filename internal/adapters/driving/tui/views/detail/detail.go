// Package detail provides the book detail view component for the TUI.
package detail

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// View is the book detail view. It lists the book's chunks and lets
// the user retry an already-sent one.
type View struct {
	styles   *styles.Styles
	library  driving.Library
	delivery driving.Delivery

	book         *domain.Book
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
	statusLine   string
}

// NewView creates a new detail view.
func NewView(s *styles.Styles, library driving.Library, delivery driving.Delivery) *View {
	return &View{
		styles:   s,
		library:  library,
		delivery: delivery,
	}
}

// SetBook sets the book and reloads it from the library.
func (v *View) SetBook(book domain.Book) tea.Cmd {
	v.book = &book
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	v.statusLine = ""
	v.loading = true
	return v.loadBook(book.ID)
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// loadBook returns a command that reloads the book.
func (v *View) loadBook(id string) tea.Cmd {
	return func() tea.Msg {
		if v.library == nil {
			return messages.BookLoaded{Err: fmt.Errorf("library service not available")}
		}

		book, err := v.library.Get(context.Background(), id)
		return messages.BookLoaded{Book: book, Err: err}
	}
}

// retryChunk returns a command that resends the selected chunk.
func (v *View) retryChunk(id string, index int) tea.Cmd {
	return func() tea.Msg {
		if v.delivery == nil {
			return messages.DispatchDone{Err: fmt.Errorf("delivery service not available")}
		}

		receipt, err := v.delivery.Retry(context.Background(), id, index)
		return messages.DispatchDone{Receipt: receipt, Err: err}
	}
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.BookLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.book = msg.Book
			v.err = nil
			if v.selected >= len(v.book.Chunks) {
				v.selected = 0
				v.scrollOffset = 0
			}
		}
		return v, nil

	case messages.DispatchDone:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Receipt != nil {
			v.statusLine = fmt.Sprintf("Resent chunk %d: %s", msg.Receipt.ChunkIndex+1, msg.Receipt.PasteURL)
		}
		if v.book != nil {
			return v, v.loadBook(v.book.ID)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	chunkCount := 0
	if v.book != nil {
		chunkCount = len(v.book.Chunks)
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < chunkCount-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if v.book != nil {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDelivery}
			}
		}
	case "y":
		if v.book == nil || v.selected >= chunkCount {
			return v, nil
		}
		chunk := v.book.Chunks[v.selected]
		if chunk.Status != domain.ChunkStatusSent {
			v.statusLine = fmt.Sprintf("Chunk %d has not been sent yet", chunk.Index+1)
			return v, nil
		}
		v.statusLine = fmt.Sprintf("Resending chunk %d...", chunk.Index+1)
		return v, v.retryChunk(v.book.ID, chunk.Index)
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewLibrary}
		}
	}

	return v, nil
}

// adjustScroll keeps the selected chunk visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of chunk lines that fit.
func (v *View) visibleItemCount() int {
	// Reserve lines for the header block, status, help, and padding
	reserved := 11
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the detail view.
func (v *View) View() string {
	var b strings.Builder

	if v.book == nil {
		b.WriteString(v.styles.Muted.Render("No book selected."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(v.book.Title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.book.SourceURL))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d/%d chunks sent, %d chapters",
		v.book.SentCount(), len(v.book.Chunks), len(v.book.Chapters()))))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading..."))
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

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.book.Chunks) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderChunk(i, &v.book.Chunks[i]))
		b.WriteString("\n")
	}

	if len(v.book.Chunks) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.book.Chunks)),
			len(v.book.Chunks))))
	}

	if v.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.statusLine))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderChunk renders a single chunk line.
func (v *View) renderChunk(index int, chunk *domain.Chunk) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	marker := " "
	if chunk.Status == domain.ChunkStatusSent {
		marker = "x"
	}

	label := fmt.Sprintf("%s[%s] %3d  %s", indicator, marker, chunk.Index+1, chunk.Chapter)
	if index == v.selected {
		return v.styles.Selected.Render(label)
	}
	if chunk.Status == domain.ChunkStatusSent {
		return v.styles.Muted.Render(label)
	}
	return v.styles.Normal.Render(label)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] delivery  [y] retry sent chunk  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Book returns the current book.
func (v *View) Book() *domain.Book {
	return v.book
}

// SelectedIndex returns the selected chunk index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
