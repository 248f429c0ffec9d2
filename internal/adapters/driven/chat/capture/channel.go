// Package capture is a chat channel for embedded surfaces.
//
// Surfaces that render delivery receipts themselves (the TUI and the
// MCP server) have no conversation to write into. This channel records
// delivered messages so they can be inspected and observes no replies;
// those surfaces feed reply signals straight into the sequencer.
package capture

import (
	"context"
	"sync"

	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// maxMessages bounds how many delivered messages are kept. Older
// messages are dropped first.
const maxMessages = 100

// Channel records delivered messages in memory.
type Channel struct {
	mu       sync.RWMutex
	messages []string
	replies  chan struct{}
}

// Compile-time check that Channel implements the driven port.
var _ driven.ChatChannel = (*Channel)(nil)

// New creates an empty capture channel.
func New() *Channel {
	return &Channel{
		replies: make(chan struct{}),
	}
}

// Deliver records one message.
func (c *Channel) Deliver(_ context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, message)
	if len(c.messages) > maxMessages {
		c.messages = c.messages[len(c.messages)-maxMessages:]
	}

	return nil
}

// Replies returns a stream that never emits.
func (c *Channel) Replies() <-chan struct{} {
	return c.replies
}

// Last returns the most recently delivered message.
func (c *Channel) Last() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return "", false
	}
	return c.messages[len(c.messages)-1], true
}

// Messages returns the recorded messages, oldest first.
func (c *Channel) Messages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}
