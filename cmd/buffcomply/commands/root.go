// Package commands implements the buffcomply command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"buffcomply/dashboard/config"
	"buffcomply/dashboard/internal/presets"
	"buffcomply/dashboard/internal/store"
)

// env is what every subcommand shares once the configuration is loaded.
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
}

var (
	current env

	// Replaced in tests.
	openStore = func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.DocumentStore, error) {
		return config.OpenStore(ctx, cfg, logger)
	}
	openPresets = func(cfg *config.Config, logger *logrus.Logger) presets.Store {
		return presets.NewFileStore(cfg.PresetsFile, logger)
	}
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "buffcomply",
		Short:         "buffcomply serves and queries the Buff Comply compliance dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.LogLevel = level
			}
			current = env{cfg: cfg, logger: config.InitLogger(cfg.LogLevel)}
			// Table output goes to stdout; keep the JSON logs on stderr for CLI runs.
			if cmd.Name() != "serve" {
				current.logger.SetOutput(cmd.ErrOrStderr())
			}
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "", "override LOG_LEVEL")

	root.AddCommand(newServeCmd(), newJobsCmd(), newPresetsCmd())
	return root
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// withStore opens the document store for the duration of fn.
func withStore(ctx context.Context, fn func(store.DocumentStore) error) error {
	docs, err := openStore(ctx, current.cfg, current.logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := docs.Close(context.Background()); err != nil {
			current.logger.WithError(err).Warn("Closing store failed")
		}
	}()
	return fn(docs)
}
