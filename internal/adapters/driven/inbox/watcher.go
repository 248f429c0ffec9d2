// Package inbox watches a drop directory and ingests new documents.
//
// Files copied or downloaded into the directory are picked up after a
// settle delay so partially-written files are not read mid-transfer.
// Only events are acted on; files already present when the watch
// starts are left alone.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
	"github.com/custodia-labs/bookfeed/internal/logger"
)

const (
	// DefaultSettleDelay is how long a file must stay quiet after its
	// last write before it is ingested.
	DefaultSettleDelay = 2 * time.Second

	// ingestTimeout bounds a single file ingest.
	ingestTimeout = 5 * time.Minute
)

// supportedExts lists the file extensions the watcher acts on. Other
// files in the directory are ignored.
var supportedExts = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".xhtml":    true,
	".pdf":      true,
	".epub":     true,
}

// Config holds the watcher configuration.
type Config struct {
	// Dir is the directory to watch. Created if missing.
	Dir string

	// SettleDelay overrides DefaultSettleDelay.
	SettleDelay time.Duration

	// Ingest receives the files.
	Ingest driving.Ingest
}

// withDefaults returns a copy of the config with defaults applied.
func (c Config) withDefaults() Config {
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	return c
}

// Watcher ingests documents dropped into a directory.
type Watcher struct {
	dir    string
	settle time.Duration
	ingest driving.Ingest

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// New creates a watcher with the given configuration.
func New(cfg Config) *Watcher {
	cfg = cfg.withDefaults()

	return &Watcher{
		dir:    cfg.Dir,
		settle: cfg.SettleDelay,
		ingest: cfg.Ingest,
		timers: make(map[string]*time.Timer),
	}
}

// Start begins watching. This method blocks until Stop is called or
// the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if w.ingest == nil {
		return domain.ErrNotImplemented
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("inbox path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("inbox path error: %w", err)
	}

	logger.Info("watching %s", w.dir)
	return w.run(ctx, watcher)
}

// Stop shuts the watcher down. Pending settle timers are cancelled and
// in-flight ingests are waited for.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.timersMu.Lock()
	for path, timer := range w.timers {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.timersMu.Unlock()

	w.wg.Wait()
	return nil
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox watch error: %v", err)
		}
	}
}

// handleEvent schedules an ingest for create and write events on
// supported, visible, regular files.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	if !supportedExts[strings.ToLower(filepath.Ext(name))] {
		logger.Debug("inbox ignoring %s: unsupported extension", name)
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	w.scheduleIngest(ctx, event.Name)
}

// scheduleIngest arms the settle timer for a path, extending it when
// more writes arrive before it fires.
func (w *Watcher) scheduleIngest(ctx context.Context, path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, ok := w.timers[path]; ok && timer.Stop() {
		timer.Reset(w.settle)
		return
	}

	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.ingestFile(ctx, path)
	})
}

// ingestFile adds one settled file to the library.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	select {
	case <-w.stopCh:
		return
	default:
	}

	if _, err := os.Stat(path); err != nil {
		logger.Debug("inbox file gone before ingest: %s", path)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	book, err := w.ingest.AddFromFile(ctx, path)
	if err != nil {
		logger.Warn("inbox ingest failed for %s: %v", filepath.Base(path), err)
		return
	}

	logger.Info("inbox added %q: %d chunks", book.Title, len(book.Chunks))
}
