package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsyn/internal/docstore"
	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// findOptions holds CLI flags for find.
type findOptions struct {
	dictionary string
	one        bool
	count      bool
}

func newFindCmd() *cobra.Command {
	var opts findOptions

	cmd := &cobra.Command{
		Use:   "find <documents.json> <conditions-json|->",
		Short: "Query a JSON file of documents with synonym expansion",
		Long: `Load a JSON array of documents into an in-memory collection, install the
configured synonyms plugin on it and run a query.

Documents without an _id are assigned one. The $text operator searches the
fields listed in store.text_fields.`,
		Example: `  docsyn find people.json '{"$text": {"$search": "victor"}}'
  docsyn find people.json '{"firstName": "dave"}' --count`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dictionary, "dictionary", "d", "", "Dictionary name (overrides synonyms.dictionary)")
	cmd.Flags().BoolVar(&opts.one, "one", false, "Return only the first match")
	cmd.Flags().BoolVar(&opts.count, "count", false, "Print the number of matches")
	cmd.MarkFlagsMutuallyExclusive("one", "count")

	return cmd
}

func runFind(ctx context.Context, cmd *cobra.Command, docsPath, condArg string, opts findOptions) error {
	conds, err := readConditions(cmd.InOrStdin(), condArg)
	if err != nil {
		return err
	}
	docs, err := readDocuments(docsPath)
	if err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	reg := hooks.NewRegistry()
	p, err := env.install(ctx, reg, opts.dictionary)
	if err != nil {
		return err
	}
	if p == nil {
		slog.Debug("find_without_synonyms")
	}

	coll, err := docstore.New("cli",
		docstore.WithTextFields(env.cfg.Store.TextFields...),
		docstore.WithHooks(reg),
		docstore.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer func() { _ = coll.Close() }()

	if _, err := coll.Insert(ctx, docs...); err != nil {
		return err
	}

	var result any
	switch {
	case opts.count:
		n, err := coll.Count(ctx, conds)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
		return err
	case opts.one:
		doc, err := coll.FindOne(ctx, conds)
		if err != nil {
			return err
		}
		result = doc
	default:
		found, err := coll.Find(ctx, conds)
		if err != nil {
			return err
		}
		if found == nil {
			found = []query.Document{}
		}
		result = found
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// readDocuments reads a JSON array of objects.
func readDocuments(path string) ([]query.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeInvalidPath, fmt.Sprintf("cannot read documents: %v", err), err).
			WithDetail("path", path)
	}
	var docs []query.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, derrors.ValidationError(fmt.Sprintf("documents must be a JSON array of objects: %v", err), err).
			WithDetail("path", path)
	}
	return docs, nil
}
