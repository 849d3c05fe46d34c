package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/rewrite"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

func newRewriteCmd() *cobra.Command {
	var (
		dictionary string
		fields     []string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <conditions-json|->",
		Short: "Rewrite query conditions with synonyms",
		Long: `Rewrite a JSON condition object the way queries are rewritten before
they run, and print the result.

Plain string fields become $in lists, $in lists and $text.$search strings
are expanded. Pass - to read the conditions from stdin.`,
		Example: `  docsyn rewrite '{"$text": {"$search": "victor david"}}'
  docsyn rewrite --fields firstName '{"firstName": "vic"}'
  echo '{"alias": {"$in": ["dave"]}}' | docsyn rewrite --fields alias -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd.Context(), cmd, args[0], dictionary, fields)
		},
	}

	cmd.Flags().StringVarP(&dictionary, "dictionary", "d", "", "Dictionary name (overrides synonyms.dictionary)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Fields to expand (overrides synonyms.fields)")

	return cmd
}

func runRewrite(ctx context.Context, cmd *cobra.Command, arg, dictionary string, fields []string) error {
	conds, err := readConditions(cmd.InOrStdin(), arg)
	if err != nil {
		return err
	}

	p, err := installForCommand(ctx, dictionary)
	if err != nil {
		return err
	}
	rw := p.Rewriter()
	if len(fields) > 0 {
		rw = rewrite.New(p.Dictionary(), fields)
	}
	rw.Apply(conds)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(conds)
}

// readConditions parses arg as a JSON object, reading stdin when arg is "-".
func readConditions(stdin io.Reader, arg string) (query.Conditions, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, derrors.ValidationError("conditions are empty", nil)
	}

	var conds query.Conditions
	if err := json.Unmarshal(data, &conds); err != nil {
		return nil, derrors.ValidationError(fmt.Sprintf("conditions must be a JSON object: %v", err), err).
			WithSuggestion(`Quote the object for your shell, e.g. '{"$text": {"$search": "victor"}}'`)
	}
	if conds == nil {
		return nil, derrors.ValidationError("conditions must be a JSON object, got null", nil)
	}
	return conds, nil
}
