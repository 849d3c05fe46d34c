package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/Aman-CERP/docsyn/internal/config"
	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/internal/loader"
	"github.com/Aman-CERP/docsyn/internal/plugin"
	"github.com/Aman-CERP/docsyn/internal/stem"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
)

// environment is the loaded configuration with the dictionary machinery it
// describes.
type environment struct {
	root     string
	cfg      *config.Config
	loader   *loader.ChainLoader
	stemmer  stem.Stemmer
	registry *synonyms.Registry
}

// projectDir returns --config-dir, or the project root above the working
// directory.
func projectDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return cwd, nil
	}
	return root, nil
}

// loadEnvironment loads the configuration and builds a registry that
// resolves names through the configured paths, the user dictionary
// directory and finally the bundled dictionaries.
func loadEnvironment() (*environment, error) {
	root, err := projectDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	base, err := stem.New(cfg.Stemming.Algorithm)
	if err != nil {
		return nil, err
	}
	stemmer := stem.NewCached(base, cfg.Stemming.CacheSize)

	chain := loader.Chain(loader.NewDirLoader(cfg.Dictionaries.SearchPaths()...), loader.Bundled())
	registry := synonyms.NewRegistry(
		synonyms.WithLoader(chain),
		synonyms.WithStemmer(stemmer),
		synonyms.WithLogger(slog.Default()),
	)

	return &environment{
		root:     root,
		cfg:      cfg,
		loader:   chain,
		stemmer:  stemmer,
		registry: registry,
	}, nil
}

// dictionaryOptions returns the build options the configuration selects.
func (e *environment) dictionaryOptions() synonyms.Options {
	return synonyms.Options{
		Stem:       e.cfg.Synonyms.Stem,
		KeyOnly:    e.cfg.Synonyms.KeyOnly,
		QuoteMatch: e.cfg.Synonyms.QuoteMatch,
		Stemmer:    e.stemmer,
	}
}

// install registers the configured plugin on reg. A non-empty dictionary
// name replaces the configured dictionary.
func (e *environment) install(ctx context.Context, reg *hooks.Registry, dictionary string, opts ...plugin.Option) (*plugin.Plugin, error) {
	cfg := e.cfg.Synonyms
	if dictionary != "" {
		cfg.Dictionary = config.DictionaryRef{Name: dictionary}
		cfg.DictionaryName = ""
	}
	opts = append([]plugin.Option{
		plugin.WithRegistry(e.registry),
		plugin.WithStemmer(e.stemmer),
		plugin.WithLogger(slog.Default()),
	}, opts...)
	return plugin.Install(ctx, reg, cfg, opts...)
}
