package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ambientin/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and MCP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port (overrides server.port)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	mp, err := a.open()
	if err != nil {
		return err
	}
	defer mp.Close()

	handler := api.NewRouter(mp.svc, mp.database, api.Config{
		Version:         serverVersion,
		Logger:          a.logger,
		WritesPerMinute: a.cfg.RateLimit.WritesPerMinute,
	})
	server := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	a.logger.Info("ambientin-server listening",
		"addr", server.Addr,
		"db", a.cfg.Database.Path,
		"version", serverVersion,
		"narrative", a.cfg.Narrative.Enabled,
	)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", a.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
