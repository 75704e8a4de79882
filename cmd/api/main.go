// Command api serves the RecipeSnap HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pageza/recipesnap/backend/config"
	"github.com/pageza/recipesnap/backend/internal/logging"
	"github.com/pageza/recipesnap/backend/internal/server"
	"github.com/pageza/recipesnap/backend/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Serve the RecipeSnap API",
		Long:          "Serves recipe suggestions for photos of ingredients, filtered by dietary preferences.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.ServerPort = port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "override SERVER_PORT")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Setup(cfg)
	slog.SetDefault(logger)
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.TelemetryEnabled {
		shutdownTelemetry, err := telemetry.Setup(os.Stderr, time.Minute)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTelemetry(ctx); err != nil {
				logger.Warn("failed to flush telemetry", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return errors.Join(err, srv.Shutdown(context.Background()))
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
