// Package docstore is an in-memory document collection that runs query hooks
// before every read, the way a document database driver does.
//
// Documents are kept in insertion order. Text fields are indexed in a
// memory-only bleve index to serve $text searches; every other condition is
// matched against the stored documents directly.
package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/google/uuid"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// DefaultTextFields are indexed when no text fields are configured.
var DefaultTextFields = []string{"title", "description"}

// Collection is a named, ordered set of documents.
type Collection struct {
	name       string
	textFields []string
	hooks      *hooks.Registry
	logger     *slog.Logger

	mu     sync.RWMutex
	docs   []query.Document
	byID   map[string]int
	index  bleve.Index
	closed bool
}

// Option configures a Collection.
type Option func(*Collection)

// WithTextFields sets the document fields covered by $text searches.
// Dotted paths address nested fields.
func WithTextFields(fields ...string) Option {
	return func(c *Collection) {
		c.textFields = append([]string(nil), fields...)
	}
}

// WithHooks sets the hook registry consulted before every read.
func WithHooks(reg *hooks.Registry) Option {
	return func(c *Collection) {
		c.hooks = reg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		c.logger = l
	}
}

// New creates an empty collection.
func New(name string, opts ...Option) (*Collection, error) {
	c := &Collection{
		name:       name,
		textFields: DefaultTextFields,
		logger:     slog.Default(),
		byID:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hooks == nil {
		c.hooks = hooks.NewRegistry()
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeIndexFailed, "failed to create text index", err).
			WithDetail("collection", name)
	}
	c.index = idx
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Hooks returns the registry plugins attach to.
func (c *Collection) Hooks() *hooks.Registry { return c.hooks }

// TextFields returns the fields covered by $text searches.
func (c *Collection) TextFields() []string { return append([]string(nil), c.textFields...) }

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Insert stores copies of docs and returns their IDs. Documents without an
// _id get a random UUID. Duplicate IDs are rejected and nothing is stored.
func (c *Collection) Insert(ctx context.Context, docs ...query.Document) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, derrors.InternalError("collection is closed", nil)
	}

	ids := make([]string, len(docs))
	stored := make([]query.Document, len(docs))
	pending := make(map[string]struct{}, len(docs))
	batch := c.index.NewBatch()

	for i, doc := range docs {
		d := maps.Clone(doc)
		if d == nil {
			d = query.Document{}
		}
		id := d.ID()
		if raw, ok := d[query.IDField]; ok && id == "" && raw != nil {
			id = fmt.Sprint(raw)
		}
		if id == "" {
			id = uuid.NewString()
		}
		d[query.IDField] = id

		if _, dup := c.byID[id]; dup {
			return nil, duplicateID(id)
		}
		if _, dup := pending[id]; dup {
			return nil, duplicateID(id)
		}
		pending[id] = struct{}{}

		if err := batch.Index(id, c.textOf(d)); err != nil {
			return nil, derrors.New(derrors.ErrCodeIndexFailed, fmt.Sprintf("failed to index document %s", id), err)
		}
		ids[i] = id
		stored[i] = d
	}

	if err := c.index.Batch(batch); err != nil {
		return nil, derrors.New(derrors.ErrCodeIndexFailed, "failed to execute index batch", err)
	}
	for i, d := range stored {
		c.byID[ids[i]] = len(c.docs)
		c.docs = append(c.docs, d)
	}

	c.logger.Debug("documents_indexed",
		slog.String("collection", c.name),
		slog.Int("count", len(docs)),
		slog.Int("total", len(c.docs)))
	return ids, nil
}

func duplicateID(id string) error {
	return derrors.ValidationError(fmt.Sprintf("duplicate document id %q", id), nil).WithDetail("id", id)
}

// textOf returns the indexable text of every configured text field.
func (c *Collection) textOf(d query.Document) map[string]any {
	out := make(map[string]any, len(c.textFields))
	for _, field := range c.textFields {
		var parts []string
		for _, v := range valuesAt(map[string]any(d), field) {
			if s, ok := v.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			out[field] = joinText(parts)
		}
	}
	return out
}

// Get returns a copy of the document with the given ID.
func (c *Collection) Get(id string) (query.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(c.docs[i]), true
}

// Find returns copies of every document matching conds, in insertion order.
// The find hooks run first and may rewrite conds.
func (c *Collection) Find(ctx context.Context, conds query.Conditions) ([]query.Document, error) {
	var out []query.Document
	err := c.run(ctx, hooks.OpFind, conds, func() error {
		docs, err := c.match(ctx, conds, 0)
		out = docs
		return err
	})
	return out, err
}

// FindOne returns the first matching document, or nil when none matches.
func (c *Collection) FindOne(ctx context.Context, conds query.Conditions) (query.Document, error) {
	var out query.Document
	err := c.run(ctx, hooks.OpFindOne, conds, func() error {
		docs, err := c.match(ctx, conds, 1)
		if len(docs) > 0 {
			out = docs[0]
		}
		return err
	})
	return out, err
}

// Count returns the number of matching documents.
func (c *Collection) Count(ctx context.Context, conds query.Conditions) (int, error) {
	var n int
	err := c.run(ctx, hooks.OpCount, conds, func() error {
		docs, err := c.match(ctx, conds, 0)
		n = len(docs)
		return err
	})
	return n, err
}

func (c *Collection) run(ctx context.Context, op hooks.Op, conds query.Conditions, exec func() error) error {
	start := time.Now()
	executed := false
	err := c.hooks.Run(ctx, op, conds, func() error {
		executed = true
		return exec()
	})
	c.logger.Debug("query_executed",
		slog.String("collection", c.name),
		slog.String("op", string(op)),
		slog.Bool("executed", executed),
		slog.Duration("duration", time.Since(start)))
	return err
}

// Close releases the text index.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.index.Close()
}
