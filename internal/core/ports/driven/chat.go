package driven

import "context"

// ChatChannel is the delivery endpoint for rendered chunk messages.
//
// The channel also surfaces an inbound "reply observed" signal: one
// receive per reply noticed in the conversation. The sequencer never
// times out waiting for a reply; the wait ends only via the signal or
// an explicit pause.
type ChatChannel interface {
	// Deliver sends one message. An error means the message did not
	// reach the conversation and is wrapped around
	// domain.ErrDeliveryFailed.
	Deliver(ctx context.Context, message string) error

	// Replies returns the reply-observed signal stream. Implementations
	// that cannot observe replies return a channel that never emits.
	Replies() <-chan struct{}
}
