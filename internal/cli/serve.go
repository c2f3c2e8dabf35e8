package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	pgdb "github.com/alanyang/prompt-vault/internal/adapter/postgres"
	"github.com/alanyang/prompt-vault/internal/wire"
)

type serveOptions struct {
	migrate         bool
	shutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, change feed and MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply pending migrations before serving")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")

	return cmd
}

func runServe(parent context.Context, rootOpts *RootOptions, opts *serveOptions) error {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := wire.Build(ctx, cfg, Version)
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}
	defer app.Close()

	if opts.migrate {
		if err := pgdb.Migrate(ctx, app.Pool); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP + MCP server listening", "addr", app.Server.Addr, "version", Version)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			slog.Error("HTTP server error", "error", serveErr)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer shutdownCancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("prompt-vault server stopped")
	return serveErr
}
