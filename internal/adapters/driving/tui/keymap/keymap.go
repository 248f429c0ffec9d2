// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// Add opens the add-book prompt in the library view.
	Add key.Binding

	// Reload refreshes the library list.
	Reload key.Binding

	// SendNext dispatches the next pending chunk.
	SendNext key.Binding

	// SendAll switches auto-advance on and dispatches the next chunk.
	SendAll key.Binding

	// Pause switches auto-advance off.
	Pause key.Binding

	// Reply marks the awaited reply as observed.
	Reply key.Binding

	// Retry resends an already-sent chunk.
	Retry key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "add book"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		SendNext: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send next"),
		),
		SendAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "send all"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply seen"),
		),
		Retry: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "retry"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// LibraryHelp returns keybindings for the library view.
func (k *KeyMap) LibraryHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Add, k.Reload, k.Quit}
}

// DeliveryHelp returns keybindings for the delivery view.
func (k *KeyMap) DeliveryHelp() []key.Binding {
	return []key.Binding{k.SendNext, k.SendAll, k.Reply, k.Pause, k.Retry, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.SendNext, k.SendAll, k.Reply, k.Pause, k.Retry},
		{k.Add, k.Reload, k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
