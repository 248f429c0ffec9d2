package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// --- Mock implementations ---

type errWriter struct{}

func (errWriter) Write(_ []byte) (int, error) {
	return 0, errors.New("terminal gone")
}

// --- Tests ---

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, os.Stdout, cfg.Out)
	assert.Equal(t, os.Stdin, cfg.In)

	buf := &bytes.Buffer{}
	cfg = Config{Out: buf, In: strings.NewReader("")}.withDefaults()
	assert.Equal(t, buf, cfg.Out)
}

func TestDeliver_WritesMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	c := New(Config{Out: buf, In: strings.NewReader("")})
	defer c.Close()

	err := c.Deliver(context.Background(), "Dune (2/80)\n\nchunk text\n\nhttps://dpaste.org/abc")
	require.NoError(t, err)

	assert.Equal(t, "Dune (2/80)\n\nchunk text\n\nhttps://dpaste.org/abc\n", buf.String())
}

func TestDeliver_WriteError(t *testing.T) {
	c := New(Config{Out: errWriter{}, In: strings.NewReader("")})
	defer c.Close()

	err := c.Deliver(context.Background(), "message")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "writing message")
}

func TestDeliver_AfterClose(t *testing.T) {
	c := New(Config{Out: &bytes.Buffer{}, In: strings.NewReader("")})
	require.NoError(t, c.Close())

	err := c.Deliver(context.Background(), "message")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
}

func TestReplies_SignalPerLine(t *testing.T) {
	pr, pw := io.Pipe()
	c := New(Config{Out: &bytes.Buffer{}, In: pr})
	defer c.Close()
	defer pw.Close()

	for i := 0; i < 2; i++ {
		_, err := pw.Write([]byte("\n"))
		require.NoError(t, err)

		select {
		case <-c.Replies():
		case <-time.After(time.Second):
			t.Fatal("no reply signal for line")
		}
	}
}

func TestReplies_CollapseWhilePending(t *testing.T) {
	pr, pw := io.Pipe()
	c := New(Config{Out: &bytes.Buffer{}, In: pr})
	defer c.Close()

	_, err := pw.Write([]byte("\n\n\n"))
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	// Let the watcher drain the reader; nothing receives meanwhile, so
	// the extra lines must collapse into the one pending signal.
	time.Sleep(100 * time.Millisecond)

	select {
	case <-c.Replies():
	default:
		t.Fatal("expected one pending reply signal")
	}

	select {
	case <-c.Replies():
		t.Fatal("extra reply lines should collapse while a signal is pending")
	default:
	}
}

func TestClose_StopsSignals(t *testing.T) {
	pr, pw := io.Pipe()
	c := New(Config{Out: &bytes.Buffer{}, In: pr})
	defer pw.Close()

	require.NoError(t, c.Close())

	_, err := pw.Write([]byte("\n"))
	require.NoError(t, err)

	select {
	case <-c.Replies():
		t.Fatal("closed channel should not emit reply signals")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClose_Idempotent(t *testing.T) {
	c := New(Config{Out: &bytes.Buffer{}, In: strings.NewReader("")})
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
