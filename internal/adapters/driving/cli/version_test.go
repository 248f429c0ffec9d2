package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Short(t *testing.T) {
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	// Save and restore version
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	output, err := executeCommand(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, output, "bookfeed version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	// Save and restore version
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	output, err := executeCommand(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, output, "bookfeed version dev")
}

func TestSetVersion(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	SetVersion("v2.0.0")
	assert.Equal(t, "v2.0.0", version)

	// Empty value keeps the current version.
	SetVersion("")
	assert.Equal(t, "v2.0.0", version)
}
