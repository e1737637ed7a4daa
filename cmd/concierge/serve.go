package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/careroute/concierge/pkg/config"
	"github.com/careroute/concierge/pkg/debug"
	"github.com/careroute/concierge/pkg/engine"
	"github.com/careroute/concierge/pkg/handlers"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
	transporthttp "github.com/careroute/concierge/pkg/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := debug.Init(debug.Options{
			Categories: cfg.Logging.Debug,
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	scoped := storage.WithTimeout(store, cfg.Storage.CallTimeout)

	gw, err := newGateway(cfg.Engine)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer gw.Close()

	reg, err := tools.NewRegistry(handlers.Catalog()...)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	persister := engine.NewPersister(scoped, cfg.Storage.PersistTimeout, logger)
	eng, err := engine.New(engine.Options{
		Gateway:  gw,
		Registry: reg,
		Handlers: handlers.New(handlers.Deps{
			Store: scoped,
			Search: handlers.SearchConfig{
				DefaultLimit: cfg.Search.DefaultLimit,
				MaxLimit:     cfg.Search.MaxLimit,
				PoolSize:     cfg.Search.PoolSize,
			},
			Discard: persister,
			Logger:  logger,
		}),
		Persister: persister,
		Logger:    logger,
	}, engine.Config{
		Model:           cfg.Engine.Model,
		Instructions:    cfg.Engine.Instructions,
		MaxTokens:       cfg.Engine.MaxTokens,
		MaxHistoryTurns: cfg.Engine.MaxHistoryTurns,
		Timeout:         cfg.Engine.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	authMW, err := newAuthMiddleware(cfg.Auth, cfg.Metrics.Path)
	if err != nil {
		return err
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithHealthChecker(store),
		transporthttp.WithLogger(logger),
		transporthttp.WithMetricsPath(""),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, transporthttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if authMW != nil {
		opts = append(opts, transporthttp.WithAuth(authMW))
	}
	srv := transporthttp.NewServer(eng, opts...)

	logger.Info("concierge starting",
		"port", cfg.Server.Port,
		"provider", gw.Name(),
		"model", cfg.Engine.Model,
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type,
		"tools", len(reg.Names()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")
		return nil
	})
	return g.Wait()
}
