// Package delivery provides the send-flow view component for the TUI.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// View drives the chunk send flow for one book.
type View struct {
	styles   *styles.Styles
	delivery driving.Delivery
	settings driving.Settings

	bookID    string
	bookTitle string
	snapshot  *domain.DeliverySnapshot
	receipt   *domain.DeliveryReceipt
	service   domain.PasteService

	bar      *status.Bar
	spin     spinner.Model
	inFlight bool

	statusLine string
	err        error
	width      int
	height     int
	ready      bool
}

// NewView creates a new delivery view.
func NewView(s *styles.Styles, delivery driving.Delivery, settings driving.Settings) *View {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:   s,
		delivery: delivery,
		settings: settings,
		bar:      status.NewBar(s, keymap.DefaultKeyMap()),
		spin:     sp,
	}
}

// SetBook points the view at a book and refreshes its snapshot.
func (v *View) SetBook(book domain.Book) tea.Cmd {
	v.bookID = book.ID
	v.bookTitle = book.Title
	v.snapshot = nil
	v.receipt = nil
	v.err = nil
	v.statusLine = ""
	v.inFlight = false
	v.bar.Clear()

	cmds := []tea.Cmd{v.loadSnapshot()}
	if v.settings != nil {
		cmds = append(cmds, v.loadSettings())
	}
	return tea.Batch(cmds...)
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// loadSnapshot returns a command that reads the delivery state.
func (v *View) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		if v.delivery == nil {
			return messages.SnapshotLoaded{Err: fmt.Errorf("delivery service not available")}
		}

		snapshot, err := v.delivery.State(context.Background(), v.bookID)
		return messages.SnapshotLoaded{Snapshot: snapshot, Err: err}
	}
}

// loadSettings returns a command that reads the app settings.
func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		settings, err := v.settings.Settings(context.Background())
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) sendNext() tea.Cmd {
	return func() tea.Msg {
		receipt, err := v.delivery.SendNext(context.Background(), v.bookID)
		return messages.DispatchDone{Receipt: receipt, Err: err}
	}
}

func (v *View) sendAll() tea.Cmd {
	return func() tea.Msg {
		receipt, err := v.delivery.SendAll(context.Background(), v.bookID)
		return messages.DispatchDone{Receipt: receipt, Err: err}
	}
}

func (v *View) replyObserved() tea.Cmd {
	return func() tea.Msg {
		receipt, err := v.delivery.ReplyObserved(context.Background(), v.bookID)
		return messages.DispatchDone{Receipt: receipt, Err: err}
	}
}

func (v *View) retryChunk(index int) tea.Cmd {
	return func() tea.Msg {
		receipt, err := v.delivery.Retry(context.Background(), v.bookID, index)
		return messages.DispatchDone{Receipt: receipt, Err: err}
	}
}

func (v *View) pause() tea.Cmd {
	return func() tea.Msg {
		return messages.DeliveryPaused{Err: v.delivery.Pause(context.Background(), v.bookID)}
	}
}

// Update handles messages for the delivery view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		v.bar.SetWidth(msg.Width)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.inFlight {
			return v, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case messages.SnapshotLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			v.bar.SetState(status.StateError)
			v.bar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.snapshot = msg.Snapshot
		v.syncBar()
		return v, nil

	case messages.DispatchDone:
		v.inFlight = false
		switch {
		case errors.Is(msg.Err, domain.ErrNothingToSend):
			v.err = nil
			v.statusLine = "Nothing left to send."
		case msg.Err != nil:
			v.err = msg.Err
			v.bar.SetState(status.StateError)
			v.bar.SetMessage(msg.Err.Error())
			return v, v.loadSnapshot()
		default:
			v.err = nil
			if msg.Receipt != nil {
				v.receipt = msg.Receipt
				v.statusLine = fmt.Sprintf("Delivered chunk %d (%s)", msg.Receipt.ChunkIndex+1, msg.Receipt.Chapter)
			}
		}
		return v, v.loadSnapshot()

	case messages.DeliveryPaused:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.statusLine = "Auto-advance paused."
		return v, v.loadSnapshot()

	case messages.SettingsLoaded:
		if msg.Err == nil {
			v.service = msg.Settings.PasteService
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
	switch msg.String() {
	case "s":
		return v.dispatch(v.sendNext())
	case "a":
		return v.dispatch(v.sendAll())
	case "r":
		return v.dispatch(v.replyObserved())
	case "y":
		if v.snapshot == nil || v.snapshot.LastSentChunk < 0 {
			v.statusLine = "No sent chunk to retry."
			return v, nil
		}
		return v.dispatch(v.retryChunk(v.snapshot.LastSentChunk))
	case "p":
		return v, v.pause()
	case "?":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDetail}
		}
	}

	return v, nil
}

// dispatch runs a delivery command with the in-flight spinner. A second
// dispatch is refused while one is running.
func (v *View) dispatch(cmd tea.Cmd) (*View, tea.Cmd) {
	if v.inFlight {
		v.statusLine = "A dispatch is already in flight."
		return v, nil
	}
	v.inFlight = true
	v.statusLine = ""
	v.err = nil
	v.bar.SetState(status.StateSending)
	return v, tea.Batch(v.spin.Tick, cmd)
}

// syncBar mirrors the snapshot into the status bar.
func (v *View) syncBar() {
	if v.snapshot == nil {
		return
	}
	v.bar.SetProgress(v.snapshot.SentCount, v.snapshot.TotalCount)
	switch {
	case v.inFlight:
		v.bar.SetState(status.StateSending)
	case v.snapshot.State == domain.DeliveryDone:
		v.bar.SetState(status.StateDone)
	case v.snapshot.State == domain.DeliverySending:
		v.bar.SetState(status.StateWaiting)
	default:
		v.bar.SetState(status.StateReady)
	}
}

// View renders the delivery view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Delivery - " + v.bookTitle))
	b.WriteString("\n")
	if v.service != "" {
		b.WriteString(v.styles.Muted.Render("publishing via " + string(v.service)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.snapshot != nil {
		b.WriteString(v.renderProgressBar())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Normal.Render("State: " + v.snapshot.State.Description()))
		if v.snapshot.AutoAdvance {
			b.WriteString(v.styles.Subtitle.Render("  [auto-advance]"))
		}
		b.WriteString("\n")
		if next := v.snapshot.NextIndex; next >= 0 {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Next: chunk %d", next+1)))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(v.styles.Muted.Render("Loading delivery state..."))
		b.WriteString("\n")
	}

	if v.inFlight {
		b.WriteString("\n")
		b.WriteString(v.spin.View())
		b.WriteString(v.styles.Subtitle.Render(" dispatching..."))
		b.WriteString("\n")
	}

	if v.receipt != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Last sent: chunk %d (%s)", v.receipt.ChunkIndex+1, v.receipt.Chapter)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("  " + v.receipt.PasteURL))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("  " + v.receipt.Message))
		b.WriteString("\n")
	}

	if v.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.statusLine))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.bar.View())

	return b.String()
}

// renderProgressBar renders sent/total as a text bar.
func (v *View) renderProgressBar() string {
	barWidth := v.width - 14
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 10 {
		barWidth = 10
	}

	filled := 0
	if v.snapshot.TotalCount > 0 {
		filled = v.snapshot.SentCount * barWidth / v.snapshot.TotalCount
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := v.styles.Success.Render(strings.Repeat("█", filled)) +
		v.styles.Muted.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %d/%d", bar, v.snapshot.SentCount, v.snapshot.TotalCount)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.bar.SetWidth(width)
}

// BookID returns the book the view is driving.
func (v *View) BookID() string {
	return v.bookID
}

// Snapshot returns the last loaded snapshot.
func (v *View) Snapshot() *domain.DeliverySnapshot {
	return v.snapshot
}

// Receipt returns the last receipt shown.
func (v *View) Receipt() *domain.DeliveryReceipt {
	return v.receipt
}

// InFlight reports whether a dispatch is running.
func (v *View) InFlight() bool {
	return v.inFlight
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
