package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/careroute/concierge/pkg/config"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/storage/postgres"
	"github.com/careroute/concierge/pkg/storage/sqlite"
)

var seedPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return migrate(cmd.Context(), cfg.Storage, seedPath)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&seedPath, "seed", "", "YAML facility seed to load after migrating")
}

type migrator interface {
	storage.FacilitySeeder
	Migrate(ctx context.Context) error
	Close() error
}

func migrate(ctx context.Context, cfg config.StorageConfig, seed string) error {
	var (
		store migrator
		err   error
	)
	switch cfg.Type {
	case "postgres":
		store, err = postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	case "sqlite":
		store, err = sqlite.New(ctx, sqlite.Config{Path: cfg.SQLite.Path})
	default:
		return fmt.Errorf("storage type %q has no migrations", cfg.Type)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating %s: %w", cfg.Type, err)
	}
	slog.Info("migrations applied", "storage", cfg.Type)

	if seed != "" {
		return seedFacilities(ctx, store, seed)
	}
	return nil
}
