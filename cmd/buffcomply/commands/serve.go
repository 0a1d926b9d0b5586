package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"buffcomply/dashboard/handlers"
	"buffcomply/dashboard/internal/complyclient"
	"buffcomply/dashboard/internal/i18n"
	"buffcomply/dashboard/middleware"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the dashboard HTTP API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				current.cfg.Port = port
			}
			return serve(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "override PORT")
	return cmd
}

func serve(parent context.Context) error {
	cfg, logger := current.cfg, current.logger

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := docs.Close(context.Background()); err != nil {
			logger.WithError(err).Warn("Closing store failed")
		}
	}()

	translator, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return err
	}

	metrics := middleware.NewMetrics()
	comply := complyclient.New(complyclient.Options{
		BaseURL: cfg.ComplyAPIURL,
		Timeout: cfg.ComplyAPITimeout,
		Observe: metrics.ObserveUpstream,
	}, logger)

	h := handlers.NewApplicationHandler(handlers.Dependencies{
		Store:      docs,
		Comply:     comply,
		Presets:    openPresets(cfg, logger),
		Translator: translator,
		Metrics:    metrics,
		Logger:     logger,
		ListLimit:  cfg.ListLimit,
		LoginDelay: cfg.LoginDelay,
	})
	app := handlers.NewApp(h, cfg.CORSOrigins)

	listenErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("Starting dashboard API")
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down dashboard API...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Dashboard API shut down gracefully.")
	return nil
}
