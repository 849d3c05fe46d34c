// Package telemetry collects rewrite telemetry for dictionary tuning.
// All telemetry data is kept in memory - no external reporting.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/docsyn/internal/rewrite"
)

// =============================================================================
// Circular Buffer
// =============================================================================

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // Next write position
	size     int // Current number of items
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity

	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items in the buffer in FIFO order (oldest first).
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return []T{}
	}

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		// Full - oldest item is at head
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items in the buffer.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// =============================================================================
// Snapshot
// =============================================================================

// TermCount represents a term and how often it went unmatched.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// RewriteSnapshot is an immutable snapshot of rewrite metrics.
type RewriteSnapshot struct {
	ShapeCounts     map[string]int64 `json:"shape_counts"`
	FieldCounts     map[string]int64 `json:"field_counts"`
	TopUnmatched    []TermCount      `json:"top_unmatched"`
	RecentUnmatched []string         `json:"recent_unmatched"`
	TotalFields     int64            `json:"total_fields"`
	RewrittenFields int64            `json:"rewritten_fields"`
	UnmatchedTerms  int64            `json:"unmatched_terms"`
	Since           time.Time        `json:"since"`
}

// RewriteRate returns the percentage of targeted fields that were rewritten.
func (s *RewriteSnapshot) RewriteRate() float64 {
	if s.TotalFields == 0 {
		return 0
	}
	return float64(s.RewrittenFields) / float64(s.TotalFields) * 100
}

// =============================================================================
// Rewrite Metrics
// =============================================================================

// Config configures the rewrite metrics collector.
type Config struct {
	TopUnmatchedCapacity    int // Max distinct unmatched terms to track (default: 100)
	RecentUnmatchedCapacity int // Max recent unmatched terms to keep (default: 50)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopUnmatchedCapacity:    100,
		RecentUnmatchedCapacity: 50,
	}
}

// RewriteMetrics records how conditions are classified and which terms the
// dictionary does not know. It implements rewrite.Recorder.
// Thread-safe for concurrent access.
type RewriteMetrics struct {
	mu sync.Mutex

	shapes          map[rewrite.Shape]int64
	fields          map[string]int64
	unmatched       *lru.Cache[string, int64]
	recent          *CircularBuffer[string]
	totalFields     int64
	rewrittenFields int64
	unmatchedTerms  int64
	startTime       time.Time
	config          Config
}

var _ rewrite.Recorder = (*RewriteMetrics)(nil)

// NewRewriteMetrics creates a collector with default configuration.
func NewRewriteMetrics() *RewriteMetrics {
	return NewRewriteMetricsWithConfig(DefaultConfig())
}

// NewRewriteMetricsWithConfig creates a collector with custom configuration.
func NewRewriteMetricsWithConfig(cfg Config) *RewriteMetrics {
	if cfg.TopUnmatchedCapacity <= 0 {
		cfg.TopUnmatchedCapacity = 100
	}
	if cfg.RecentUnmatchedCapacity <= 0 {
		cfg.RecentUnmatchedCapacity = 50
	}

	unmatched, _ := lru.New[string, int64](cfg.TopUnmatchedCapacity)

	return &RewriteMetrics{
		shapes:    make(map[rewrite.Shape]int64),
		fields:    make(map[string]int64),
		unmatched: unmatched,
		recent:    NewCircularBuffer[string](cfg.RecentUnmatchedCapacity),
		startTime: time.Now(),
		config:    cfg,
	}
}

// RecordField counts one classification of field.
func (m *RewriteMetrics) RecordField(field string, shape rewrite.Shape) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shapes[shape]++
	m.totalFields++
	switch shape {
	case rewrite.PlainString, rewrite.Membership, rewrite.TextSearch:
		m.fields[field]++
		m.rewrittenFields++
	}
}

// RecordUnmatched counts a term that had no dictionary entry.
// Terms are lowercased so casing variants aggregate.
func (m *RewriteMetrics) RecordUnmatched(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}

	m.mu.Lock()
	count, _ := m.unmatched.Get(term)
	m.unmatched.Add(term, count+1)
	m.unmatchedTerms++
	m.recent.Add(term)
	m.mu.Unlock()
}

// Snapshot returns current metrics for reporting.
func (m *RewriteMetrics) Snapshot() *RewriteSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	shapes := make(map[string]int64, len(m.shapes))
	for k, v := range m.shapes {
		shapes[k.String()] = v
	}

	fields := make(map[string]int64, len(m.fields))
	for k, v := range m.fields {
		fields[k] = v
	}

	var top []TermCount
	for _, key := range m.unmatched.Keys() {
		if count, ok := m.unmatched.Peek(key); ok {
			top = append(top, TermCount{Term: key, Count: count})
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Term < top[j].Term
	})

	return &RewriteSnapshot{
		ShapeCounts:     shapes,
		FieldCounts:     fields,
		TopUnmatched:    top,
		RecentUnmatched: m.recent.Items(),
		TotalFields:     m.totalFields,
		RewrittenFields: m.rewrittenFields,
		UnmatchedTerms:  m.unmatchedTerms,
		Since:           m.startTime,
	}
}

// Reset clears all counters.
func (m *RewriteMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := NewRewriteMetricsWithConfig(m.config)
	m.shapes = fresh.shapes
	m.fields = fresh.fields
	m.unmatched = fresh.unmatched
	m.recent = fresh.recent
	m.totalFields = 0
	m.rewrittenFields = 0
	m.unmatchedTerms = 0
	m.startTime = fresh.startTime
}
