package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.Settings = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize     = "chunker.chunk_size"
	keyPasteService  = "publish.service"
	keyMessageFormat = "delivery.message_format"
	keyGistToken     = "publish.gist.token"
	keyGDriveToken   = "publish.gdrive.token"
)

// settingsKeys lists every known key in display order.
var settingsKeys = []string{
	keyChunkSize,
	keyPasteService,
	keyMessageFormat,
	keyGistToken,
	keyGDriveToken,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Settings returns the current settings with defaults applied for
// unset keys.
func (s *SettingsService) Settings(_ context.Context) (domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	if s.configStore == nil {
		return defaults, nil
	}

	settings := domain.AppSettings{
		ChunkSize:     s.getInt(keyChunkSize, defaults.ChunkSize),
		PasteService:  s.getService(defaults.PasteService),
		MessageFormat: s.getString(keyMessageFormat, defaults.MessageFormat),
	}
	return settings, nil
}

// Get retrieves one settings value by key.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if err := s.checkKey(key); err != nil {
		return "", err
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return "", err
	}

	switch key {
	case keyChunkSize:
		return strconv.Itoa(settings.ChunkSize), nil
	case keyPasteService:
		return settings.PasteService.String(), nil
	case keyMessageFormat:
		return settings.MessageFormat, nil
	default:
		return s.configStore.GetString(key), nil
	}
}

// Set validates and stores one settings value by key.
func (s *SettingsService) Set(_ context.Context, key, value string) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}

	switch key {
	case keyChunkSize:
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return fmt.Errorf("chunk size %q must be a positive integer: %w", value, domain.ErrInvalidInput)
		}
		return s.configStore.Set(key, size)

	case keyPasteService:
		service := domain.PasteService(strings.ToLower(strings.TrimSpace(value)))
		if !service.IsValid() {
			return fmt.Errorf("paste service %q (valid: %s): %w",
				value, joinServices(), domain.ErrInvalidInput)
		}
		return s.configStore.Set(key, service.String())

	case keyMessageFormat:
		if !strings.Contains(value, domain.PlaceholderURL) {
			return fmt.Errorf("message format must contain %s: %w",
				domain.PlaceholderURL, domain.ErrInvalidInput)
		}
		return s.configStore.Set(key, value)

	default:
		// Token keys are free-form.
		return s.configStore.Set(key, value)
	}
}

// Reset restores one key to its default. Token keys reset to empty.
func (s *SettingsService) Reset(_ context.Context, key string) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}

	defaults := domain.DefaultAppSettings()
	switch key {
	case keyChunkSize:
		return s.configStore.Set(key, defaults.ChunkSize)
	case keyPasteService:
		return s.configStore.Set(key, defaults.PasteService.String())
	case keyMessageFormat:
		return s.configStore.Set(key, defaults.MessageFormat)
	default:
		return s.configStore.Set(key, "")
	}
}

// Keys lists the known settings keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsKeys))
	copy(keys, settingsKeys)
	return keys
}

// IsSecret reports whether the key holds a credential.
func (s *SettingsService) IsSecret(key string) bool {
	return strings.HasSuffix(key, ".token")
}

// Token returns the stored access token for a paste service.
func (s *SettingsService) Token(_ context.Context, service domain.PasteService) (string, error) {
	if !service.RequiresToken() {
		return "", nil
	}

	var key string
	switch service {
	case domain.PasteServiceGist:
		key = keyGistToken
	case domain.PasteServiceGDrive:
		key = keyGDriveToken
	default:
		return "", fmt.Errorf("no token key for %q: %w", service, domain.ErrInvalidInput)
	}

	if s.configStore == nil {
		return "", fmt.Errorf("%s: %w", service, domain.ErrTokenRequired)
	}
	token := strings.TrimSpace(s.configStore.GetString(key))
	if token == "" {
		return "", fmt.Errorf("%s: %w", service, domain.ErrTokenRequired)
	}
	return token, nil
}

// checkKey rejects keys outside the known set.
func (s *SettingsService) checkKey(key string) error {
	for _, k := range settingsKeys {
		if k == key {
			return nil
		}
	}
	return fmt.Errorf("unknown settings key %q: %w", key, domain.ErrInvalidInput)
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return fallback
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getService(fallback domain.PasteService) domain.PasteService {
	v := s.configStore.GetString(keyPasteService)
	if v == "" {
		return fallback
	}
	service := domain.PasteService(v)
	if !service.IsValid() {
		return fallback
	}
	return service
}

func joinServices() string {
	services := domain.PasteServices()
	names := make([]string, len(services))
	for i, svc := range services {
		names[i] = svc.String()
	}
	return strings.Join(names, ", ")
}
