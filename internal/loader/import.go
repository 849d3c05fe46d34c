package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
)

// ImportOptions control Import.
type ImportOptions struct {
	// Format of the written file. Empty selects JSON.
	Format Format
	// Overwrite replaces an existing dictionary of the same name.
	Overwrite bool
}

// Import writes src into dir as <name>.<format> under the directory lock and
// returns the written path. The file is replaced atomically. Copies of name
// in other formats are removed so the new file is the one a loader finds.
func Import(ctx context.Context, dir, name string, src synonyms.Source, opts ImportOptions) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if len(src) == 0 {
		return "", derrors.SourceError(name, "dictionary has no entries", nil)
	}
	format := opts.Format
	if format == "" {
		format = JSON
	}

	data, err := Encode(format, src)
	if err != nil {
		return "", err
	}

	lock := NewDirLock(dir)
	if err := lock.Lock(ctx); err != nil {
		return "", err
	}
	defer func() { _ = lock.Unlock() }()

	existing, err := NewFSLoader(os.DirFS(dir), dir).Path(name)
	if err == nil && !opts.Overwrite {
		return "", derrors.New(derrors.ErrCodeInvalidInput,
			fmt.Sprintf("dictionary %q already exists", name), nil).
			WithDetail("path", filepath.Join(dir, existing)).
			WithSuggestion("Pass --force to replace it")
	}

	target := filepath.Join(dir, name+"."+string(format))
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to install dictionary: %w", err)
	}

	for _, ext := range Extensions {
		if other := filepath.Join(dir, name+ext); other != target {
			_ = os.Remove(other)
		}
	}
	return target, nil
}
