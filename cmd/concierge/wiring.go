package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/careroute/concierge/pkg/auth"
	"github.com/careroute/concierge/pkg/auth/jwt"
	"github.com/careroute/concierge/pkg/config"
	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/provider/anthropic"
	"github.com/careroute/concierge/pkg/provider/openaicompat"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/storage/memory"
	"github.com/careroute/concierge/pkg/storage/postgres"
	"github.com/careroute/concierge/pkg/storage/sqlite"
)

// openStore creates the configured backing store. The memory store is
// seeded from storage.memory.seed_file when set.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Type {
	case "memory":
		store := memory.New()
		if cfg.Memory.SeedFile != "" {
			if err := seedFacilities(ctx, store, cfg.Memory.SeedFile); err != nil {
				return nil, err
			}
		}
		logger.Info("storage enabled", "type", "memory", "seed_file", cfg.Memory.SeedFile)
		return store, nil

	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("creating postgres store: %w", err)
		}
		logger.Info("storage enabled", "type", "postgres", "max_conns", cfg.Postgres.MaxConns)
		return store, nil

	case "sqlite":
		store, err := sqlite.New(ctx, sqlite.Config{
			Path:           cfg.SQLite.Path,
			MigrateOnStart: cfg.SQLite.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("creating sqlite store: %w", err)
		}
		logger.Info("storage enabled", "type", "sqlite", "path", cfg.SQLite.Path)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// seedFacilities loads a YAML facility seed into the store.
func seedFacilities(ctx context.Context, seeder storage.FacilitySeeder, path string) error {
	facilities, err := memory.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("loading seed %s: %w", path, err)
	}
	if err := seeder.UpsertFacilities(ctx, facilities); err != nil {
		return fmt.Errorf("seeding facilities: %w", err)
	}
	slog.Info("facilities seeded", "path", path, "count", len(facilities))
	return nil
}

// newGateway creates the configured engine gateway.
func newGateway(cfg config.EngineConfig) (provider.Gateway, error) {
	switch cfg.Provider {
	case "openai":
		gw, err := openaicompat.New(openaicompat.Config{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return gw, nil
	case "anthropic":
		gw, err := anthropic.New(anthropic.Config{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.APIKey,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", cfg.Provider)
	}
}

// newAuthMiddleware returns nil when authentication is disabled.
func newAuthMiddleware(cfg config.AuthConfig, metricsPath string) (func(http.Handler) http.Handler, error) {
	if cfg.Type != "jwt" {
		return nil, nil
	}
	authn, err := jwt.New(jwt.Config{
		Secret:    []byte(cfg.JWT.Secret),
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		UserClaim: cfg.JWT.UserClaim,
	})
	if err != nil {
		return nil, fmt.Errorf("creating jwt authenticator: %w", err)
	}
	chain := &auth.AuthChain{
		Authenticators: []auth.Authenticator{authn},
		AllowAnonymous: true,
	}
	bypass := append([]string{}, auth.DefaultBypassEndpoints...)
	if metricsPath != "" {
		bypass = append(bypass, metricsPath)
	}
	return auth.Middleware(chain, bypass), nil
}
