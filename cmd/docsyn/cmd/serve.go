package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/internal/logging"
	"github.com/Aman-CERP/docsyn/internal/mcp"
	"github.com/Aman-CERP/docsyn/internal/plugin"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
	"github.com/Aman-CERP/docsyn/internal/telemetry"
	"github.com/Aman-CERP/docsyn/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server for AI assistants.

The server exposes the configured dictionary through the expand_terms,
rewrite_conditions, list_terms and rewrite_stats tools. Logs go to
~/.docsyn/logs/server.log because stdout carries the protocol.

With dictionaries.watch enabled, edits to dictionary files are picked up
without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio")

	return cmd
}

// runServe writes nothing to stdout before the server owns it.
func runServe(ctx context.Context, transport string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	level := env.cfg.Server.LogLevel
	if debugMode {
		level = "debug"
	}
	cleanup, err := logging.SetupServerMode(level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	var (
		opts    []plugin.Option
		srvOpts = []mcp.Option{mcp.WithLogger(slog.Default())}
	)
	if env.cfg.Telemetry.Enabled {
		metrics := telemetry.NewRewriteMetricsWithConfig(telemetry.Config{
			TopUnmatchedCapacity:    env.cfg.Telemetry.UnmatchedCapacity,
			RecentUnmatchedCapacity: telemetry.DefaultConfig().RecentUnmatchedCapacity,
		})
		opts = append(opts, plugin.WithRecorder(metrics))
		srvOpts = append(srvOpts, mcp.WithMetrics(metrics))
	}

	p, err := env.install(ctx, hooks.NewRegistry(), "", opts...)
	if err != nil {
		slog.Error("synonyms_install_failed", slog.String("error", err.Error()))
		return err
	}
	if p == nil {
		slog.Warn("no_dictionary_configured", slog.String("project", env.root))
	}

	if env.cfg.Dictionaries.Watch {
		if err := startDictionaryWatcher(ctx, env, p); err != nil {
			slog.Warn("dictionary_watch_disabled", slog.String("error", err.Error()))
		}
	}

	return mcp.NewServer(p, srvOpts...).Serve(ctx, transport)
}

// startDictionaryWatcher watches the dictionary paths in the background
// until ctx is done.
func startDictionaryWatcher(ctx context.Context, env *environment, p *plugin.Plugin) error {
	window, err := env.cfg.Dictionaries.Debounce()
	if err != nil {
		return err
	}
	opts := watcher.DefaultOptions()
	opts.DebounceWindow = window

	w, err := watcher.New(opts)
	if err != nil {
		return err
	}

	go func() {
		if err := watcher.Run(ctx, w, env.cfg.Dictionaries.SearchPaths(), reloadOnChange(p, env.registry)); err != nil {
			slog.Warn("dictionary_watcher_stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// reloadOnChange returns a watcher callback that rebuilds the live
// dictionary when its file changes and evicts other cached dictionaries
// built from a changed file.
func reloadOnChange(p *plugin.Plugin, registry *synonyms.Registry) func(context.Context, []watcher.Event) {
	return func(ctx context.Context, events []watcher.Event) {
		seen := make(map[string]struct{}, len(events))
		for _, ev := range events {
			if ev.Name == "" {
				continue
			}
			if _, ok := seen[ev.Name]; ok {
				continue
			}
			seen[ev.Name] = struct{}{}

			if p != nil && ev.Name == p.SourceName() {
				_ = p.Reload(ctx)
				continue
			}
			if ids := registry.InvalidateSource(ev.Name); len(ids) > 0 {
				slog.Info("dictionaries_invalidated",
					slog.String("source", ev.Name),
					slog.Any("ids", ids),
					slog.String("operation", ev.Operation.String()))
			}
		}
	}
}
