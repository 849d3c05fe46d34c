package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Aman-CERP/docsyn/internal/loader"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new dictionary file appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing dictionary file was written.
	OpModify
	// OpDelete indicates a dictionary file was removed.
	OpDelete
	// OpRename indicates a dictionary file was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Event reports a change to one dictionary file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Name is the dictionary source name the file provides.
	Name string

	// Operation is the type of file system operation.
	Operation Operation

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 300ms
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode (fallback).
	// Default: 5s
	PollInterval time.Duration

	// EventBufferSize is the size of the batch channel buffer.
	// Default: 100
	EventBufferSize int

	// Extensions are the file extensions treated as dictionaries.
	// Default: loader.Extensions
	Extensions []string

	// ForcePolling skips fsnotify entirely.
	ForcePolling bool
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  300 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 100,
		Extensions:      loader.Extensions,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if len(o.Extensions) == 0 {
		o.Extensions = defaults.Extensions
	}
	return o
}

// SourceName returns the dictionary source name served by path, or "" when
// path is not a dictionary file. Hidden files (editor swap and lock files)
// are never dictionaries.
func (o Options) SourceName(path string) string {
	base := filepath.Base(path)
	if base == "" || strings.HasPrefix(base, ".") {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(base))
	if !slices.Contains(o.Extensions, ext) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
