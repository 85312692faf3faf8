package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/call-service/config"
	"github.com/cwrk-planet/call-service/internal/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded postgres migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		initLogger(cfg)
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is not set")
		}
		return runMigrate(cmd.Context(), cfg)
	},
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.New(ctx, postgresConfig(cfg))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}
