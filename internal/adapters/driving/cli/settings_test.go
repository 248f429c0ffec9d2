package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsListCmd(t *testing.T) {
	t.Run("lists keys with defaults", func(t *testing.T) {
		setupServices(t)

		output, err := executeCommand(t, "settings", "list")

		require.NoError(t, err)
		assert.Contains(t, output, "chunker.chunk_size")
		assert.Contains(t, output, "publish.service")
		assert.Contains(t, output, "delivery.message_format")
		assert.Contains(t, output, "(not set)")
		assert.Contains(t, output, "Configuration is valid.")
	})

	t.Run("masks token values", func(t *testing.T) {
		s := setupServices(t)
		s.settings.values["publish.gist.token"] = "ghp_1234567890abcdef"

		output, err := executeCommand(t, "settings", "list")

		require.NoError(t, err)
		assert.NotContains(t, output, "ghp_1234567890abcdef")
		assert.Contains(t, output, "ghp_...cdef")
	})
}

func TestSettingsGetCmd(t *testing.T) {
	s := setupServices(t)
	s.settings.values["publish.service"] = "gist"

	output, err := executeCommand(t, "settings", "get", "publish.service")

	require.NoError(t, err)
	assert.Contains(t, output, "gist")
}

func TestSettingsSetCmd(t *testing.T) {
	t.Run("sets value from args", func(t *testing.T) {
		s := setupServices(t)

		output, err := executeCommand(t, "settings", "set", "chunker.chunk_size", "1500")

		require.NoError(t, err)
		assert.Contains(t, output, "Set chunker.chunk_size to 1500.")
		assert.Equal(t, "1500", s.settings.values["chunker.chunk_size"])
	})

	t.Run("does not echo token values", func(t *testing.T) {
		s := setupServices(t)

		output, err := executeCommand(t, "settings", "set", "publish.gist.token", "ghp_secret")

		require.NoError(t, err)
		assert.Contains(t, output, "Set publish.gist.token.")
		assert.NotContains(t, output, "ghp_secret")
		assert.Equal(t, "ghp_secret", s.settings.values["publish.gist.token"])
	})
}

func TestSettingsResetCmd(t *testing.T) {
	s := setupServices(t)
	s.settings.values["publish.service"] = "gist"

	output, err := executeCommand(t, "settings", "reset", "publish.service")

	require.NoError(t, err)
	assert.Contains(t, output, "Reset publish.service")
	_, ok := s.settings.values["publish.service"]
	assert.False(t, ok)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "ghp_...cdef", maskToken("ghp_1234567890abcdef"))
}
