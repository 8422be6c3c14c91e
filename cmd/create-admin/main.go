// Command create-admin creates the PostFlow administrator account, or resets
// it if the email is already registered.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nimson07/postFlow/internal/auth"
	"github.com/nimson07/postFlow/internal/config"
	"github.com/nimson07/postFlow/internal/event"
	"github.com/nimson07/postFlow/internal/repository/postgres"
	"github.com/nimson07/postFlow/internal/service"
	"github.com/nimson07/postFlow/migrations"
	"github.com/nimson07/postFlow/pkg/database"
	"github.com/nimson07/postFlow/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.NewForEnvironment("postflow-create-admin", cfg.Environment, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("failed to create admin", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	authService := service.NewAuthService(
		postgres.NewUserRepository(pool),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		event.Noop{},
		cfg.BcryptCost,
		log,
	)

	user, created, err := authService.SeedAdmin(ctx, service.SeedAdminInput{
		Email:    cfg.AdminEmail,
		Name:     cfg.AdminName,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}

	if created {
		log.Info("admin user created", slog.String("email", user.Email))
	} else {
		log.Info("admin user updated", slog.String("email", user.Email))
	}
	return nil
}
