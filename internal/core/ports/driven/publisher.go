package driven

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// Publisher uploads text to a paste service and returns a publicly
// dereferenceable URL.
type Publisher interface {
	// Name identifies the backing paste service.
	Name() domain.PasteService

	// Publish uploads the text and returns its public URL. A malformed
	// or non-URL response is an error, wrapped around
	// domain.ErrPublishFailed.
	Publish(ctx context.Context, title, text string) (string, error)
}

// PublisherRegistry resolves the publisher for a paste service.
type PublisherRegistry interface {
	// Publisher returns the publisher registered under the given
	// service, or domain.ErrInvalidInput when none is.
	Publisher(service domain.PasteService) (Publisher, error)
}
