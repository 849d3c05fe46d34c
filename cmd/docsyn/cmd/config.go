package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/docsyn/configs"
	"github.com/Aman-CERP/docsyn/internal/config"
	"github.com/Aman-CERP/docsyn/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage project and user configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/docsyn/config.yaml)
  3. Project config (.docsyn.yaml)
  4. Environment variables (DOCSYN_*)`,
		Example: `  # Create .docsyn.yaml in the project root
  docsyn config init

  # Create the user config
  docsyn config init --user

  # Show effective configuration
  docsyn config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		user  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from a template",
		Long: `Create .docsyn.yaml in the project root, or the user configuration with
--user. An existing file is kept unless --force is given, in which case it
is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, user, force)
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Create the user configuration instead")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, user config, project config and environment variables.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectDir()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			out.KeyValue("User", config.GetUserConfigPath())
			out.KeyValue("Project", filepath.Join(root, config.ProjectConfigFile))
			out.KeyValue("Dictionaries", config.GetUserDictionaryDir())
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, user, force bool) error {
	out := output.New(cmd.OutOrStdout())

	path, template := config.GetUserConfigPath(), configs.UserConfigTemplate
	if !user {
		root, err := projectDir()
		if err != nil {
			return err
		}
		path, template = filepath.Join(root, config.ProjectConfigFile), configs.ProjectConfigTemplate
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to replace it (a backup is kept)")
			return nil
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		out.Statusf("💾", "Backup: %s", backup)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Status("📋", "Run 'docsyn config show' to verify")
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(env.cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out := output.New(cmd.OutOrStdout())
	out.Statusf("📋", "Project: %s", env.root)
	out.Newline()
	data, err := yaml.Marshal(env.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}
