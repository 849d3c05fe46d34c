package synonyms

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/stem"
)

// Loader resolves a source name to a Source.
// Unknown names must fail with an error matching errors.ErrSourceNotFound.
type Loader interface {
	Load(ctx context.Context, name string) (Source, error)
}

// Registry memoizes built dictionaries by identity.
//
// The first Prepare for an identity builds the dictionary; every later call
// returns the same *Dictionary, whatever source or options it passes.
// Concurrent first calls for one identity share a single build.
type Registry struct {
	loader  Loader
	stemmer stem.Stemmer
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

type entry struct {
	dict   *Dictionary
	source string // loader name, empty for inline sources
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLoader sets the loader used for sources given by name.
func WithLoader(l Loader) RegistryOption {
	return func(r *Registry) {
		r.loader = l
	}
}

// WithStemmer sets the stemmer used for dictionaries prepared with Stem and
// no explicit Options.Stemmer.
func WithStemmer(s stem.Stemmer) RegistryOption {
	return func(r *Registry) {
		r.stemmer = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare returns the dictionary cached under id, building it on first use.
// When src is nil, id doubles as the loader name.
func (r *Registry) Prepare(ctx context.Context, id string, src Source, opts Options) (*Dictionary, error) {
	if src != nil {
		return r.prepare(ctx, id, "", func(context.Context) (Source, error) { return src, nil }, opts)
	}
	return r.PrepareFrom(ctx, id, id, opts)
}

// PrepareFrom returns the dictionary cached under id, building it on first use
// from the source the loader resolves for sourceName.
func (r *Registry) PrepareFrom(ctx context.Context, id, sourceName string, opts Options) (*Dictionary, error) {
	return r.prepare(ctx, id, sourceName, func(ctx context.Context) (Source, error) {
		if r.loader == nil {
			return nil, derrors.SourceNotFound(sourceName)
		}
		return r.loader.Load(ctx, sourceName)
	}, opts)
}

func (r *Registry) prepare(ctx context.Context, id, sourceName string, resolve func(context.Context) (Source, error), opts Options) (*Dictionary, error) {
	if id == "" {
		return nil, derrors.ValidationError("dictionary identity is empty", nil)
	}
	if d, ok := r.Get(id); ok {
		return d, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if d, ok := r.Get(id); ok {
			return d, nil
		}

		start := time.Now()
		src, err := resolve(ctx)
		if err != nil {
			return nil, err
		}
		if opts.Stem && opts.Stemmer == nil {
			opts.Stemmer = r.stemmer
		}
		d := Build(id, src, opts)

		r.mu.Lock()
		r.entries[id] = &entry{dict: d, source: sourceName}
		r.mu.Unlock()

		r.logger.Debug("dictionary_prepared",
			slog.String("name", id),
			slog.String("source", sourceName),
			slog.Int("entries", len(src)),
			slog.Int("keys", d.Len()),
			slog.Bool("stem", opts.Stem),
			slog.Bool("key_only", opts.KeyOnly),
			slog.Duration("duration", time.Since(start)))
		return d, nil
	})
	if err != nil {
		r.logger.Warn("dictionary_prepare_failed", slog.String("name", id), slog.String("error", err.Error()))
		return nil, err
	}
	return v.(*Dictionary), nil
}

// Get returns the cached dictionary for id without building it.
func (r *Registry) Get(id string) (*Dictionary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.dict, true
}

// Invalidate drops the dictionary cached under id. The next Prepare rebuilds it.
func (r *Registry) Invalidate(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

// InvalidateSource drops every dictionary built from the named loader source
// and returns their identities, sorted.
func (r *Registry) InvalidateSource(sourceName string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, e := range r.entries {
		if e.source == sourceName {
			ids = append(ids, id)
			delete(r.entries, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Names returns the cached identities, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for id := range r.entries {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// Preload prepares the named loader sources concurrently, each cached under
// its own name. It returns the first error.
func (r *Registry) Preload(ctx context.Context, names []string, opts Options) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			_, err := r.PrepareFrom(ctx, name, name, opts)
			return err
		})
	}
	return g.Wait()
}
