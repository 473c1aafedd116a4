package recent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/entrhq/tangent/pkg/logging"
	"github.com/entrhq/tangent/pkg/types"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reports changes to the store file, whichever process made them.
// Bursts of events are debounced into one callback carrying the list as it
// is on disk once the burst has settled.
type Watcher struct {
	mu        sync.Mutex
	store     *Store
	logger    *logging.Logger
	onChange  func([]types.RecentFile)
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	pending   bool
	lastEvent time.Time
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewWatcher creates a watcher for store. onChange runs on the watcher's
// goroutine.
func NewWatcher(store *Store, logger *logging.Logger, onChange func([]types.RecentFile)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Watcher{
		store:    store,
		logger:   logger,
		onChange: onChange,
		watcher:  fw,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching the store directory. It creates the directory if
// needed and returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watch(); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Infof("watching %s", w.store.Path())

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Warnf("error closing file watcher: %v", err)
	}
}

func (w *Watcher) watch() error {
	if err := os.MkdirAll(w.store.Dir(), 0o750); err != nil {
		return fmt.Errorf("failed to create app directory: %w", err)
	}
	if err := w.watcher.Add(w.store.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.store.Dir(), err)
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("file watcher error: %v", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != FileName {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debugf("%s event for %s", event.Op, event.Name)

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// flush delivers a change once the debounce window has passed.
func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	files, err := w.store.List()
	if err != nil {
		if errors.Is(err, ErrParse) {
			w.logger.Warnf("recent files store changed but is malformed: %v", err)
		} else {
			w.logger.Errorf("failed to reload recent files: %v", err)
		}
		return
	}

	if w.onChange != nil {
		w.onChange(files)
	}
}
