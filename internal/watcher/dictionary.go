package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DictionaryWatcher watches dictionary directories with fsnotify, falling
// back to polling when fsnotify cannot be used.
type DictionaryWatcher struct {
	fsWatcher      *fsnotify.Watcher
	poller         *PollingWatcher
	debouncer      *Debouncer
	events         chan []Event
	errors         chan error
	stopCh         chan struct{}
	opts           Options
	logger         *slog.Logger
	mu             sync.RWMutex
	dirs           []string
	stopped        bool
	droppedBatches atomic.Uint64
}

// New creates a watcher. It does not watch anything until Start.
func New(opts Options) (*DictionaryWatcher, error) {
	opts = opts.WithDefaults()

	w := &DictionaryWatcher{
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []Event, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
		logger:    slog.Default(),
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			w.fsWatcher = fsw
		} else {
			w.logger.Warn("fsnotify_unavailable", slog.String("error", err.Error()))
		}
	}
	if w.fsWatcher == nil {
		w.poller = NewPollingWatcher(opts)
	}
	return w, nil
}

// Start watches dirs until Stop is called or ctx is done. It blocks.
// Directories that do not exist are skipped.
func (w *DictionaryWatcher) Start(ctx context.Context, dirs ...string) error {
	abs := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		p, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve absolute path: %w", err)
		}
		if !slices.Contains(abs, p) {
			abs = append(abs, p)
		}
	}

	w.mu.Lock()
	w.dirs = abs
	useFsnotify := w.fsWatcher != nil
	w.mu.Unlock()

	go w.forwardDebouncedEvents(ctx)

	if useFsnotify {
		return w.startFsnotify(ctx)
	}
	return w.startPolling(ctx)
}

func (w *DictionaryWatcher) startFsnotify(ctx context.Context) error {
	for _, dir := range w.dirs {
		err := w.fsWatcher.Add(dir)
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("dictionary_dir_missing", slog.String("dir", dir))
			continue
		}

		w.logger.Warn("fsnotify_failed_falling_back_to_polling",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		w.mu.Lock()
		_ = w.fsWatcher.Close()
		w.fsWatcher = nil
		w.poller = NewPollingWatcher(w.opts)
		w.mu.Unlock()
		return w.startPolling(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *DictionaryWatcher) startPolling(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case event, ok := <-w.poller.Events():
				if !ok {
					return
				}
				w.debouncer.Add(event)
			}
		}
	}()

	return w.poller.Start(ctx, w.dirs...)
}

func (w *DictionaryWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	name := w.opts.SourceName(event.Name)
	if name == "" {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(Event{
		Path:      event.Name,
		Name:      name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

func (w *DictionaryWatcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case events, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(events) > 0 {
				w.emitEvents(events)
			}
		}
	}
}

// emitEvents holds the read lock while sending so Stop cannot close the
// channel underneath it.
func (w *DictionaryWatcher) emitEvents(events []Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}

	select {
	case w.events <- events:
	default:
		count := w.droppedBatches.Add(1)
		w.logger.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(events)),
			slog.Uint64("total_dropped_batches", count))
	}
}

func (w *DictionaryWatcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
	}
}

// Stop stops the watcher and closes its channels. Safe to call multiple times.
func (w *DictionaryWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)

	w.debouncer.Stop()
	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
	if w.poller != nil {
		_ = w.poller.Stop()
	}

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel of debounced event batches.
func (w *DictionaryWatcher) Events() <-chan []Event {
	return w.events
}

// Errors returns the channel of non-fatal watcher errors.
func (w *DictionaryWatcher) Errors() <-chan error {
	return w.errors
}

// DroppedBatches returns the number of batches dropped due to a full buffer.
func (w *DictionaryWatcher) DroppedBatches() uint64 {
	return w.droppedBatches.Load()
}

// WatcherType returns "fsnotify" or "polling".
func (w *DictionaryWatcher) WatcherType() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.fsWatcher != nil {
		return "fsnotify"
	}
	return "polling"
}

// Dirs returns the absolute directories being watched.
func (w *DictionaryWatcher) Dirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.dirs...)
}

// Run starts w over dirs and calls fn with every batch, returning when ctx
// is done or the watcher stops.
func Run(ctx context.Context, w *DictionaryWatcher, dirs []string, fn func(context.Context, []Event)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startErr := make(chan error, 1)
	go func() {
		startErr <- w.Start(ctx, dirs...)
	}()

	errs := w.Errors()
	for {
		select {
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			fn(ctx, batch)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Warn("watcher_error", slog.String("error", err.Error()))
		case err := <-startErr:
			_ = w.Stop()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
