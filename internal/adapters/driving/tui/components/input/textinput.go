// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bookfeed/internal/adapters/driving/tui/styles"
)

// SourceInput wraps a bubbles textinput for entering a book source.
type SourceInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewSourceInput creates a new source input component.
func NewSourceInput(s *styles.Styles) *SourceInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "URL or file path..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50

	return &SourceInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the source input.
func (s *SourceInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SourceInput) Update(msg tea.Msg) (*SourceInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the source input.
func (s *SourceInput) View() string {
	label := s.styles.Title.Render("Add book: ")
	input := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (s *SourceInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SourceInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (s *SourceInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SourceInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SourceInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SourceInput) SetWidth(width int) {
	s.width = width
	// Account for label and padding
	inputWidth := width - 14
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.textinput.Width = inputWidth
}

// Width returns the current width.
func (s *SourceInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SourceInput) Reset() {
	s.textinput.Reset()
}
