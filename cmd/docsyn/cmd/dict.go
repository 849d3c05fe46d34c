package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsyn/internal/config"
	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/loader"
	"github.com/Aman-CERP/docsyn/internal/output"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
)

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage synonym dictionaries",
		Long: `List, inspect and import synonym dictionaries.

Names resolve through dictionaries.paths, then the user dictionary
directory, then the bundled dictionaries. The first match wins.`,
	}

	cmd.AddCommand(newDictListCmd())
	cmd.AddCommand(newDictShowCmd())
	cmd.AddCommand(newDictImportCmd())

	return cmd
}

func newDictListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available dictionaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDictList(cmd.Context(), cmd)
		},
	}
}

func newDictShowCmd() *cobra.Command {
	var (
		prefix     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the closed synonym map of a dictionary",
		Long: `Build a dictionary with the configured options and print every lookup
key with the words it expands to.`,
		Example: `  docsyn dict show nicknames
  docsyn dict show nicknames --prefix vic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDictShow(cmd.Context(), cmd, args[0], prefix, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only show keys starting with prefix")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newDictImportCmd() *cobra.Command {
	var (
		name   string
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a dictionary into the user dictionary directory",
		Long: `Validate a JSON, YAML, TOML or msgpack dictionary and write it to the
user dictionary directory, where every project can refer to it by name.

The input format is inferred from the file extension.`,
		Example: `  docsyn dict import ./aliases.yaml --name aliases
  docsyn dict import ./brands.toml --name brands --format yaml --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDictImport(cmd.Context(), cmd, args[0], name, format, force)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dictionary name (default: file name without extension)")
	cmd.Flags().StringVar(&format, "format", "json", "Stored format: json, yaml, toml, msgpack")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing dictionary")

	return cmd
}

func runDictList(ctx context.Context, cmd *cobra.Command) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	names, err := env.loader.Names(ctx)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if len(names) == 0 {
		out.Warning("No dictionaries found")
		return nil
	}
	out.Header("Dictionaries")
	for _, n := range names {
		path, err := env.loader.Resolve(n)
		if err != nil {
			path = "?"
		}
		out.KeyValue(n, path)
	}
	return nil
}

func runDictShow(ctx context.Context, cmd *cobra.Command, name, prefix string, jsonOutput bool) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	dict, err := env.registry.PrepareFrom(ctx, name, name, env.dictionaryOptions())
	if err != nil {
		return err
	}

	keys := dict.WithPrefix(strings.ToLower(prefix))
	if jsonOutput {
		terms := make(map[string][]string, len(keys))
		for _, k := range keys {
			terms[k], _ = dict.Lookup(k)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(terms)
	}

	out := output.New(cmd.OutOrStdout())
	out.Header(fmt.Sprintf("%s (%d keys)", dict.Name(), dict.Len()))
	if len(keys) == 0 {
		out.Warningf("No keys start with %q", prefix)
		return nil
	}
	for _, k := range keys {
		words, _ := dict.Lookup(k)
		out.Expansion(k, words)
	}
	return nil
}

func runDictImport(ctx context.Context, cmd *cobra.Command, file, name, format string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	inFormat, err := loader.FormatFromPath(file)
	if err != nil {
		return err
	}
	outFormat, err := loader.ParseFormat(format)
	if err != nil {
		return err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return derrors.New(derrors.ErrCodeSourceUnreadable, fmt.Sprintf("cannot read %s: %v", file, err), err).
			WithDetail("path", file)
	}
	src, err := loader.Decode(inFormat, data)
	if err != nil {
		return err
	}

	dir := config.GetUserDictionaryDir()
	path, err := loader.Import(ctx, dir, name, src, loader.ImportOptions{Format: outFormat, Overwrite: force})
	if err != nil {
		return err
	}

	dict := synonyms.Build(name, src, synonyms.Options{})
	out.Successf("Imported dictionary %q", name)
	out.KeyValue("Entries", len(src))
	out.KeyValue("Keys", dict.Len())
	out.KeyValue("Location", path)
	return nil
}
