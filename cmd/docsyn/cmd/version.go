package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsyn/internal/loader"
	"github.com/Aman-CERP/docsyn/internal/stem"
	"github.com/Aman-CERP/docsyn/pkg/version"
)

// versionInfo is the JSON form of the version command.
type versionInfo struct {
	version.BuildInfo
	Dictionaries []string `json:"bundled_dictionaries"`
	Stemmer      string   `json:"default_stemmer"`
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	var jsonOutput bool
	var shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including git commit, build date, Go version,
and the dictionaries compiled into the binary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Short output takes precedence
			if shortOutput {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			}

			bundled, err := loader.Bundled().Names(cmd.Context())
			if err != nil {
				return err
			}

			// JSON output
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(versionInfo{
					BuildInfo:    version.GetInfo(),
					Dictionaries: bundled,
					Stemmer:      stem.DefaultAlgorithm,
				})
			}

			// Default: build string, then what ships with it
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nbundled dictionaries: %s\ndefault stemmer: %s\n",
				version.String(), strings.Join(bundled, ", "), stem.DefaultAlgorithm)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")

	return cmd
}
