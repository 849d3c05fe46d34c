// Package cmd provides the CLI commands for docsyn.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/logging"
	"github.com/Aman-CERP/docsyn/internal/profiling"
	"github.com/Aman-CERP/docsyn/pkg/version"
)

// Global flags
var (
	debugMode      bool
	configDir      string
	loggingCleanup func()
)

// Profiling flags
var (
	profileOpts profiling.Options
	profile     *profiling.Session
)

// NewRootCmd creates the root command for the docsyn CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docsyn",
		Short: "Synonym expansion for document queries",
		Long: `docsyn expands the terms of document queries with synonym dictionaries
before they run, so a search for "victor" also finds "vic" and "vick".

Dictionaries are bundled (nicknames, universities), imported into the user
dictionary directory, or listed in .docsyn.yaml.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("docsyn version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.docsyn/logs/")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory containing .docsyn.yaml (default: project root)")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newExpandCmd())
	cmd.AddCommand(newRewriteCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newDictCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts the requested profiles and enables debug
// logging when --debug is set. serve installs its own file-only logger.
func startProfilingAndLogging(cmd *cobra.Command, _ []string) error {
	if profileOpts.Enabled() {
		s, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profile = s
	}

	if !debugMode || cmd.Name() == "serve" {
		return nil
	}

	cfg := logging.DefaultConfig()
	cfg.Level = "debug"
	cfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled",
		slog.String("log_file", cfg.FilePath),
		slog.String("version", version.Version))
	return nil
}

func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Info("debug_logging_stopped")
		loggingCleanup()
		loggingCleanup = nil
	}

	if profile != nil {
		err := profile.Stop()
		profile = nil
		if err != nil {
			return fmt.Errorf("failed to write profiles: %w", err)
		}
	}
	return nil
}

// Execute runs the root command and prints errors the way users read them.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), derrors.FormatForCLI(err))
		return err
	}
	return nil
}
