package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookfeed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NotNil(t, service)
	assert.NotNil(t, service.configStore)
}

func TestSettingsService_Settings_Defaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Settings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultChunkSize, settings.ChunkSize)
	assert.Equal(t, domain.PasteServiceDpaste, settings.PasteService)
	assert.Equal(t, domain.DefaultMessageFormat, settings.MessageFormat)
	assert.NoError(t, settings.Validate())
}

func TestSettingsService_Settings_Overrides(t *testing.T) {
	configStore := memory.NewConfigStore()
	require.NoError(t, configStore.Set("chunker.chunk_size", 500))
	require.NoError(t, configStore.Set("publish.service", "sprunge"))
	require.NoError(t, configStore.Set("delivery.message_format", "read {url}"))

	service := NewSettingsService(configStore)

	settings, err := service.Settings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 500, settings.ChunkSize)
	assert.Equal(t, domain.PasteServiceSprunge, settings.PasteService)
	assert.Equal(t, "read {url}", settings.MessageFormat)
}

func TestSettingsService_Settings_InvalidStoredServiceFallsBack(t *testing.T) {
	configStore := memory.NewConfigStore()
	require.NoError(t, configStore.Set("publish.service", "carrier-pigeon"))

	service := NewSettingsService(configStore)

	settings, err := service.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PasteServiceDpaste, settings.PasteService)
}

func TestSettingsService_Set_ChunkSize(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	ctx := context.Background()

	require.NoError(t, service.Set(ctx, "chunker.chunk_size", "1500"))

	value, err := service.Get(ctx, "chunker.chunk_size")
	require.NoError(t, err)
	assert.Equal(t, "1500", value)
}

func TestSettingsService_Set_ChunkSize_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
	}{
		{name: "not a number", value: "many"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Set(ctx, "chunker.chunk_size", tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set_PasteService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	ctx := context.Background()

	require.NoError(t, service.Set(ctx, "publish.service", "gist"))

	settings, err := service.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PasteServiceGist, settings.PasteService)

	// Input is normalised
	require.NoError(t, service.Set(ctx, "publish.service", "  SPRUNGE "))
	settings, err = service.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PasteServiceSprunge, settings.PasteService)
}

func TestSettingsService_Set_PasteService_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	err := service.Set(context.Background(), "publish.service", "fax")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "dpaste")
}

func TestSettingsService_Set_MessageFormat_RequiresURL(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	ctx := context.Background()

	err := service.Set(ctx, "delivery.message_format", "please read part {chunkIndex}")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, service.Set(ctx, "delivery.message_format", "please read {url}"))
}

func TestSettingsService_Set_UnknownKey(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	err := service.Set(context.Background(), "made.up", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Reset(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	ctx := context.Background()

	require.NoError(t, service.Set(ctx, "chunker.chunk_size", "99"))
	require.NoError(t, service.Set(ctx, "publish.gist.token", "ghp_secret"))

	require.NoError(t, service.Reset(ctx, "chunker.chunk_size"))
	require.NoError(t, service.Reset(ctx, "publish.gist.token"))

	value, err := service.Get(ctx, "chunker.chunk_size")
	require.NoError(t, err)
	assert.Equal(t, "2000", value)

	token, err := service.Get(ctx, "publish.gist.token")
	require.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()

	assert.Equal(t, []string{
		"chunker.chunk_size",
		"publish.service",
		"delivery.message_format",
		"publish.gist.token",
		"publish.gdrive.token",
	}, keys)
}

func TestSettingsService_IsSecret(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.True(t, service.IsSecret("publish.gist.token"))
	assert.True(t, service.IsSecret("publish.gdrive.token"))
	assert.False(t, service.IsSecret("chunker.chunk_size"))
	assert.False(t, service.IsSecret("publish.service"))
	assert.False(t, service.IsSecret("delivery.message_format"))
}

func TestSettingsService_Token(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	ctx := context.Background()

	require.NoError(t, service.Set(ctx, "publish.gist.token", "  ghp_abc123  "))

	token, err := service.Token(ctx, domain.PasteServiceGist)
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc123", token)
}

func TestSettingsService_Token_Missing(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	_, err := service.Token(context.Background(), domain.PasteServiceGDrive)
	assert.ErrorIs(t, err, domain.ErrTokenRequired)
}

func TestSettingsService_Token_NotRequired(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	token, err := service.Token(context.Background(), domain.PasteServiceDpaste)
	require.NoError(t, err)
	assert.Equal(t, "", token)
}
