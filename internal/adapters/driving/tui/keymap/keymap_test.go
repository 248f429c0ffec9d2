package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.Equal(t, []string{"q", "ctrl+c"}, km.Quit.Keys())
	assert.Equal(t, []string{"?"}, km.Help.Keys())
	assert.Equal(t, []string{"esc"}, km.Back.Keys())
	assert.Equal(t, []string{"up", "k"}, km.Up.Keys())
	assert.Equal(t, []string{"down", "j"}, km.Down.Keys())
	assert.Equal(t, []string{"enter"}, km.Select.Keys())
	assert.Equal(t, []string{"n"}, km.Add.Keys())
	assert.Equal(t, []string{"s"}, km.SendNext.Keys())
	assert.Equal(t, []string{"a"}, km.SendAll.Keys())
	assert.Equal(t, []string{"p"}, km.Pause.Keys())
	assert.Equal(t, []string{"r"}, km.Reply.Keys())
	assert.Equal(t, []string{"y"}, km.Retry.Keys())
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()
	require.Len(t, bindings, 2)
	assert.Equal(t, "quit", bindings[0].Help().Desc)
	assert.Equal(t, "help", bindings[1].Help().Desc)
}

func TestLibraryHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.LibraryHelp()
	require.Len(t, bindings, 5)
	assert.Equal(t, "add book", bindings[2].Help().Desc)
}

func TestDeliveryHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.DeliveryHelp()
	require.Len(t, bindings, 6)
	assert.Equal(t, "send next", bindings[0].Help().Desc)
	assert.Equal(t, "send all", bindings[1].Help().Desc)
	assert.Equal(t, "reply seen", bindings[2].Help().Desc)
	assert.Equal(t, "pause", bindings[3].Help().Desc)
	assert.Equal(t, "retry", bindings[4].Help().Desc)
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	rows := km.FullHelp()
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 5)
	assert.Len(t, rows[2], 5)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("s", km.SendNext))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("", km.SendNext))
}
