package main

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

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/web"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (JSON API and web pages)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := ensureAdmin(ctx, a.db, cfg.Auth.AdminEmail, cmd.OutOrStdout()); err != nil {
				return err
			}
			if n, err := store.PurgeRevokedTokens(ctx, a.db, time.Now()); err != nil {
				slog.Warn("failed to purge revoked tokens", "error", err)
			} else if n > 0 {
				slog.Info("purged expired revoked tokens", "count", n)
			}

			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :5000)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (a *app) serve(ctx context.Context) error {
	apiRouter := api.NewRouter(a.db, a.jwtSecret, a.catalog, a.lifecycle)
	webRouter, err := web.NewRouter(a.db, a.jwtSecret, a.catalog, a.lifecycle)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", server.Addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server stopped, closing storage")
	return nil
}
