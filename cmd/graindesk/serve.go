package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/graindesk/internal/app"
	httpx "github.com/Spok95/graindesk/internal/infra/http"
	"github.com/Spok95/graindesk/internal/infra/logger"
	"github.com/Spok95/graindesk/internal/migrations"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (applies migrations first when Postgres is configured)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env)

	if cfg.Postgres.DSN != "" {
		if err := migrations.Up(cfg.Postgres.DSN); err != nil {
			log.Error("migrations failed", "err", err)
			return err
		}
		log.Info("migrations applied")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpx.New(cfg.HTTP.Addr, a.Router, cfg.Metrics.Enabled)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			log.Error("http server error", "err", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
