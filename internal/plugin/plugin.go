// Package plugin installs synonym expansion on a document store's query hooks.
//
// Install reads the synonyms section of the configuration, prepares the
// dictionary through a shared registry and registers a rewriting hook ahead of
// find, findOne and count. Without a configured dictionary it does nothing.
package plugin

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Aman-CERP/docsyn/internal/config"
	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/internal/loader"
	"github.com/Aman-CERP/docsyn/internal/rewrite"
	"github.com/Aman-CERP/docsyn/internal/stem"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// Plugin is an installed synonym expansion. Its rewriter can be swapped by
// Reload while queries are running.
type Plugin struct {
	registry *synonyms.Registry
	cfg      config.SynonymsConfig
	id       string
	source   string
	opts     synonyms.Options
	recorder rewrite.Recorder
	logger   *slog.Logger

	live atomic.Pointer[rewrite.Rewriter]
}

// Option configures Install.
type Option func(*Plugin)

// WithRegistry shares a dictionary registry between installations.
// The default registry loads names from the bundled dictionaries.
func WithRegistry(r *synonyms.Registry) Option {
	return func(p *Plugin) {
		p.registry = r
	}
}

// WithStemmer sets the stemmer used when the configuration enables stemming.
func WithStemmer(s stem.Stemmer) Option {
	return func(p *Plugin) {
		p.opts.Stemmer = s
	}
}

// WithRecorder reports rewrites to rec.
func WithRecorder(rec rewrite.Recorder) Option {
	return func(p *Plugin) {
		p.recorder = rec
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = l
	}
}

// Install prepares the configured dictionary and registers the rewriter on
// every query operation of reg. It returns nil and no error when cfg names no
// dictionary. An unresolvable dictionary name fails with a not-found error.
func Install(ctx context.Context, reg *hooks.Registry, cfg config.SynonymsConfig, opts ...Option) (*Plugin, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	p := &Plugin{
		cfg:    cfg,
		logger: slog.Default(),
		opts: synonyms.Options{
			Stem:       cfg.Stem,
			KeyOnly:    cfg.KeyOnly,
			QuoteMatch: cfg.QuoteMatch,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = synonyms.NewRegistry(synonyms.WithLoader(loader.Bundled()), synonyms.WithLogger(p.logger))
	}
	if len(p.cfg.Fields) == 0 {
		p.cfg.Fields = rewrite.DefaultFields
	}

	switch {
	case cfg.Dictionary.Inline != nil && cfg.DictionaryName != "":
		p.id = cfg.DictionaryName
	case cfg.Dictionary.Inline != nil:
		p.id = synonyms.SourceID(cfg.Dictionary.Inline)
	default:
		p.id = cfg.Dictionary.Name
		p.source = cfg.Dictionary.Name
	}

	if err := p.load(ctx); err != nil {
		return nil, err
	}

	hook := p.hook()
	for _, op := range hooks.QueryOps {
		reg.Pre(op, hook)
	}

	p.logger.Info("synonyms_installed",
		slog.String("dictionary", p.id),
		slog.Any("fields", p.cfg.Fields),
		slog.Int("keys", p.Dictionary().Len()))
	return p, nil
}

// load prepares the dictionary and publishes a rewriter for it.
func (p *Plugin) load(ctx context.Context) error {
	var (
		dict *synonyms.Dictionary
		err  error
	)
	if p.cfg.Dictionary.Inline != nil {
		dict, err = p.registry.Prepare(ctx, p.id, p.cfg.Dictionary.Inline, p.opts)
	} else {
		dict, err = p.registry.PrepareFrom(ctx, p.id, p.source, p.opts)
	}
	if err != nil {
		return err
	}

	rwOpts := []rewrite.Option{rewrite.WithLogger(p.logger)}
	if p.recorder != nil {
		rwOpts = append(rwOpts, rewrite.WithRecorder(p.recorder))
	}
	p.live.Store(rewrite.New(dict, p.cfg.Fields, rwOpts...))
	return nil
}

// hook rewrites with whichever rewriter is live when the query runs.
func (p *Plugin) hook() hooks.Hook {
	return func(_ context.Context, conds query.Conditions, next hooks.Next) error {
		p.live.Load().Apply(conds)
		return next()
	}
}

// Reload drops the cached dictionary, rebuilds it from its source and swaps
// the live rewriter. On failure the previous rewriter stays live.
func (p *Plugin) Reload(ctx context.Context) error {
	p.registry.Invalidate(p.id)
	if err := p.load(ctx); err != nil {
		p.logger.Warn("synonyms_reload_failed", slog.String("dictionary", p.id), slog.String("error", err.Error()))
		return err
	}
	p.logger.Info("synonyms_reloaded", slog.String("dictionary", p.id), slog.Int("keys", p.Dictionary().Len()))
	return nil
}

// ID returns the cache identity of the dictionary.
func (p *Plugin) ID() string { return p.id }

// SourceName returns the loader name of the dictionary, or "" when inline.
func (p *Plugin) SourceName() string { return p.source }

// Fields returns the targeted condition fields.
func (p *Plugin) Fields() []string { return append([]string(nil), p.cfg.Fields...) }

// Rewriter returns the live rewriter.
func (p *Plugin) Rewriter() *rewrite.Rewriter { return p.live.Load() }

// Dictionary returns the live dictionary.
func (p *Plugin) Dictionary() *synonyms.Dictionary { return p.live.Load().Dictionary() }

// Registry returns the dictionary registry the plugin prepares through.
func (p *Plugin) Registry() *synonyms.Registry { return p.registry }
