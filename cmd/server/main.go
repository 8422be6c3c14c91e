package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimson07/postFlow/internal/app"
	"github.com/nimson07/postFlow/internal/config"
	"github.com/nimson07/postFlow/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("postflow api exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewForEnvironment("postflow-api", cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting postflow api",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("activity_store", cfg.ActivityStore),
		slog.Duration("inactivity_window", cfg.InactivityWindow),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		return err
	}
	log.Info("postflow api stopped")
	return nil
}
