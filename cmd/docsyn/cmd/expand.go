package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/internal/output"
	"github.com/Aman-CERP/docsyn/internal/plugin"
)

// expandResult is one word of `expand --json`.
type expandResult struct {
	Term    string   `json:"term"`
	Words   []string `json:"words"`
	Matched bool     `json:"matched"`
}

func newExpandCmd() *cobra.Command {
	var (
		dictionary string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "expand <word...>",
		Short: "Show the synonyms a word expands to",
		Long: `Show what each word expands to with the configured dictionary.

Words the dictionary does not know expand to themselves.`,
		Example: `  docsyn expand victor
  docsyn expand -d universities umich "University of Michigan"
  docsyn expand david --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd.Context(), cmd, args, dictionary, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&dictionary, "dictionary", "d", "", "Dictionary name (overrides synonyms.dictionary)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runExpand(ctx context.Context, cmd *cobra.Command, words []string, dictionary string, jsonOutput bool) error {
	p, err := installForCommand(ctx, dictionary)
	if err != nil {
		return err
	}

	rw := p.Rewriter()
	results := make([]expandResult, 0, len(words))
	for _, w := range words {
		syns, matched := rw.Lookup(w)
		if !matched {
			syns = []string{w}
		}
		results = append(results, expandResult{Term: w, Words: syns, Matched: matched})
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	out := output.New(cmd.OutOrStdout())
	for _, r := range results {
		out.Expansion(r.Term, r.Words)
	}
	return nil
}

// installForCommand installs the plugin on a throwaway hook registry for
// commands that only need its rewriter.
func installForCommand(ctx context.Context, dictionary string) (*plugin.Plugin, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}
	p, err := env.install(ctx, hooks.NewRegistry(), dictionary)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNoDictionary()
	}
	return p, nil
}

func errNoDictionary() error {
	return derrors.ConfigError("no dictionary configured", nil).
		WithSuggestion("Pass --dictionary or set synonyms.dictionary in .docsyn.yaml")
}
