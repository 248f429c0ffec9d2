// Package console delivers chunk messages to a terminal.
//
// Messages are written to the configured writer, and a reply is
// observed whenever a line arrives on the configured reader, so
// pressing Enter acknowledges the message that was just delivered.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Config holds the channel configuration.
type Config struct {
	// Out receives delivered messages. Defaults to os.Stdout.
	Out io.Writer

	// In is watched for reply lines. Defaults to os.Stdin.
	In io.Reader
}

// withDefaults returns a copy of the config with defaults applied.
func (c Config) withDefaults() Config {
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.In == nil {
		c.In = os.Stdin
	}
	return c
}

// Channel is a terminal-backed chat channel.
type Channel struct {
	replies chan struct{}
	stopCh  chan struct{}

	mu     sync.Mutex
	out    io.Writer
	closed bool
}

// Compile-time check that Channel implements the driven port.
var _ driven.ChatChannel = (*Channel)(nil)

// New creates a console channel and starts watching the reader for
// reply lines.
func New(cfg Config) *Channel {
	cfg = cfg.withDefaults()

	c := &Channel{
		replies: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		out:     cfg.Out,
	}
	go c.watchReplies(cfg.In)

	return c
}

// Deliver writes one message to the terminal.
func (c *Channel) Deliver(_ context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%w: channel closed", domain.ErrDeliveryFailed)
	}

	if _, err := fmt.Fprintf(c.out, "%s\n", message); err != nil {
		return fmt.Errorf("%w: writing message: %v", domain.ErrDeliveryFailed, err)
	}

	return nil
}

// Replies returns the reply-observed signal stream. At most one signal
// is held pending; replies arriving while one waits collapse into it.
func (c *Channel) Replies() <-chan struct{} {
	return c.replies
}

// Close stops the channel. Delivered messages are refused afterwards
// and no further reply signals are emitted. The reader watch ends once
// its current read returns; a read blocked on a terminal cannot be
// interrupted, so the watcher may linger until the next line or EOF.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.stopCh)

	return nil
}

// watchReplies emits one signal per line read until the reader ends or
// the channel is closed.
func (c *Channel) watchReplies(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-c.stopCh:
			return
		default:
		}

		select {
		case c.replies <- struct{}{}:
		default:
		}
	}
}
