// Package loader resolves dictionary names to synonym sources.
//
// A name maps to a file <name><ext> in a filesystem, where ext is tried in
// the order of Extensions. Loaders can be chained so user dictionaries shadow
// the bundled ones.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aman-CERP/docsyn/dictionaries"
	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
)

// ErrNotFound matches any error reporting an unknown dictionary name.
var ErrNotFound = derrors.ErrSourceNotFound

// Loader resolves a dictionary name to its source.
type Loader interface {
	synonyms.Loader
	// Names lists the dictionaries the loader can resolve, sorted.
	Names(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that could escape a dictionary directory.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || !fs.ValidPath(name) {
		return derrors.New(derrors.ErrCodeInvalidPath,
			fmt.Sprintf("invalid dictionary name %q", name), nil).
			WithSuggestion("Use a bare name such as 'nicknames', without directories or extensions")
	}
	return nil
}

// FSLoader loads dictionaries from the top level of a filesystem.
type FSLoader struct {
	fsys  fs.FS
	label string
}

// NewFSLoader creates a loader over fsys. The label names it in errors.
func NewFSLoader(fsys fs.FS, label string) *FSLoader {
	return &FSLoader{fsys: fsys, label: label}
}

// Bundled returns a loader for the dictionaries compiled into the binary.
func Bundled() *FSLoader {
	return NewFSLoader(dictionaries.FS, "bundled")
}

// Label returns the loader label.
func (l *FSLoader) Label() string { return l.label }

// Load resolves name to a source.
func (l *FSLoader) Load(ctx context.Context, name string) (synonyms.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	file, data, err := l.find(name)
	if err != nil {
		return nil, err
	}

	format, err := FormatFromPath(file)
	if err != nil {
		return nil, err
	}
	src, err := Decode(format, data)
	if err != nil {
		var de *derrors.DocsynError
		if errors.As(err, &de) {
			de.WithDetail("source", name).WithDetail("file", file).WithDetail("loader", l.label)
		}
		return nil, err
	}
	return src, nil
}

// Path returns the file name name resolves to within the filesystem.
func (l *FSLoader) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	for _, ext := range Extensions {
		file := name + ext
		if _, err := fs.Stat(l.fsys, file); err == nil {
			return file, nil
		}
	}
	return "", derrors.SourceNotFound(name).WithDetail("loader", l.label)
}

func (l *FSLoader) find(name string) (string, []byte, error) {
	for _, ext := range Extensions {
		file := name + ext
		data, err := fs.ReadFile(l.fsys, file)
		if err == nil {
			return file, data, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return "", nil, derrors.New(derrors.ErrCodeSourceUnreadable,
			fmt.Sprintf("read dictionary %q: %v", file, err), err).
			WithDetail("source", name).
			WithDetail("loader", l.label)
	}
	return "", nil, derrors.SourceNotFound(name).WithDetail("loader", l.label)
}

// Names lists the dictionaries in the filesystem. A missing root lists nothing.
func (l *FSLoader) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, derrors.New(derrors.ErrCodeSourceUnreadable,
			fmt.Sprintf("list dictionaries: %v", err), err).WithDetail("loader", l.label)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if !hasExtension(ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func hasExtension(ext string) bool {
	for _, e := range Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// NewDirLoader returns a loader searching each directory in order.
func NewDirLoader(dirs ...string) *ChainLoader {
	loaders := make([]Loader, 0, len(dirs))
	for _, dir := range dirs {
		loaders = append(loaders, NewFSLoader(os.DirFS(dir), dir))
	}
	return Chain(loaders...)
}

// ChainLoader tries each loader in turn.
type ChainLoader struct {
	loaders []Loader
}

// Chain returns a loader that returns the first successful load.
// Only not-found errors fall through to the next loader.
func Chain(loaders ...Loader) *ChainLoader {
	return &ChainLoader{loaders: loaders}
}

// Load resolves name with the first loader that knows it.
func (c *ChainLoader) Load(ctx context.Context, name string) (synonyms.Source, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	for _, l := range c.loaders {
		src, err := l.Load(ctx, name)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, derrors.SourceNotFound(name)
}

// Names lists the union of every loader's dictionaries, sorted.
func (c *ChainLoader) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, l := range c.loaders {
		list, err := l.Names(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the file that serves name, prefixed with its loader label.
func (c *ChainLoader) Resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	for _, l := range c.loaders {
		switch l := l.(type) {
		case *FSLoader:
			if file, err := l.Path(name); err == nil {
				return filepath.Join(l.label, file), nil
			}
		case *ChainLoader:
			if path, err := l.Resolve(name); err == nil {
				return path, nil
			}
		}
	}
	return "", derrors.SourceNotFound(name)
}
