package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Ingest Errors.

	// ErrUnsupportedFormat indicates no parser accepts the document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument indicates parsing produced no chunkable text.
	ErrEmptyDocument = errors.New("document contains no text")

	// Delivery Errors.

	// ErrNothingToSend indicates no chunk with status pending remains.
	ErrNothingToSend = errors.New("nothing to send")

	// ErrDeliveryInFlight indicates a dispatch is already executing for
	// this book. At most one dispatch may be in flight at a time.
	ErrDeliveryInFlight = errors.New("delivery already in flight")

	// ErrPublishFailed indicates the paste service did not return a
	// usable public URL.
	ErrPublishFailed = errors.New("publish failed")

	// ErrDeliveryFailed indicates the chat channel rejected the message.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrTokenRequired indicates the selected paste service needs an
	// access token and none is configured.
	ErrTokenRequired = errors.New("access token required")
)
