package driving

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// Settings manages the user-facing configuration record.
type Settings interface {
	// Settings returns the current settings with defaults applied for
	// unset keys.
	Settings(ctx context.Context) (domain.AppSettings, error)

	// Get retrieves one settings value by key. Secret values are
	// returned as stored; display surfaces redact them.
	Get(ctx context.Context, key string) (string, error)

	// Set validates and stores one settings value by key.
	Set(ctx context.Context, key, value string) error

	// Reset restores one key to its default.
	Reset(ctx context.Context, key string) error

	// Keys lists the known settings keys in display order.
	Keys() []string

	// IsSecret reports whether the key holds a credential that display
	// surfaces must redact.
	IsSecret(key string) bool

	// Token returns the stored access token for a paste service, or
	// domain.ErrTokenRequired when the service needs one and none is
	// configured.
	Token(ctx context.Context, service domain.PasteService) (string, error)
}
