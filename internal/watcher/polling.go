package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PollingWatcher detects dictionary changes by rescanning directories.
// Used when fsnotify is not available or fails.
type PollingWatcher struct {
	interval  time.Duration
	opts      Options
	fileState map[string]fileSnapshot
	events    chan Event
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
	dirs      []string
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// NewPollingWatcher creates a polling watcher.
func NewPollingWatcher(opts Options) *PollingWatcher {
	opts = opts.WithDefaults()
	return &PollingWatcher{
		interval:  opts.PollInterval,
		opts:      opts,
		fileState: make(map[string]fileSnapshot),
		events:    make(chan Event, 100),
		stopCh:    make(chan struct{}),
	}
}

// Start records the current state of dirs, then polls until Stop is called
// or ctx is done. Directories that do not exist yet are polled all the same.
func (p *PollingWatcher) Start(ctx context.Context, dirs ...string) error {
	p.mu.Lock()
	p.dirs = dirs
	p.fileState = p.snapshot()
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

// Stop stops polling and closes the event channel.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan Event {
	return p.events
}

// snapshot lists the dictionary files of every directory. Must be called
// with lock held.
func (p *PollingWatcher) snapshot() map[string]fileSnapshot {
	state := make(map[string]fileSnapshot)
	for _, dir := range p.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || p.opts.SourceName(e.Name()) == "" {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			state[filepath.Join(dir, e.Name())] = fileSnapshot{
				modTime: info.ModTime(),
				size:    info.Size(),
			}
		}
	}
	return state
}

// detectChanges compares the directories with the previous scan.
func (p *PollingWatcher) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.snapshot()
	now := time.Now()

	for path, snap := range current {
		prev, exists := p.fileState[path]
		switch {
		case !exists:
			p.emit(Event{Path: path, Operation: OpCreate, Timestamp: now})
		case !prev.modTime.Equal(snap.modTime) || prev.size != snap.size:
			p.emit(Event{Path: path, Operation: OpModify, Timestamp: now})
		}
	}
	for path := range p.fileState {
		if _, exists := current[path]; !exists {
			p.emit(Event{Path: path, Operation: OpDelete, Timestamp: now})
		}
	}
	p.fileState = current
}

// emit sends an event. Must be called with lock held.
func (p *PollingWatcher) emit(event Event) {
	if p.stopped {
		return
	}
	event.Name = p.opts.SourceName(event.Path)

	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()))
	}
}
