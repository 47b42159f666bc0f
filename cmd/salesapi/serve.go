package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"sales-analytics/internal/config"
	"sales-analytics/internal/middleware"
	"sales-analytics/internal/server"
	"sales-analytics/internal/services"
	"sales-analytics/internal/store"
)

const (
	startupTimeout = 30 * time.Second
	limiterCleanup = time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Database.Seed = seed
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Create the schema and load sample data when the database is empty")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := store.Open(startCtx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	closeDB := sync.OnceFunc(db.Close)
	defer closeDB()

	if cfg.Database.Seed {
		if _, err := store.Seed(startCtx, db, logger); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.Security)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go limiter.Run(janitorCtx, limiterCleanup)

	srv := server.NewServer(services.NewReports(db, logger), limiter, cfg.Security, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		stopJanitor()
		return nil
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing database pool")
		closeDB()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		return err
	}

	logger.Info("application stopped gracefully")
	return nil
}
