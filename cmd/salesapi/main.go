package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sales-analytics/internal/config"
	"sales-analytics/internal/observability"
)

const version = "1.0.0"

type app struct {
	configPath string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "salesapi",
		Short:         "Read-only sales reporting API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: $CONFIG_PATH, then config.yaml)")

	root.AddCommand(newServeCmd(a), newSeedCmd(a))
	return root
}

// setup loads configuration and installs the process logger.
func (a *app) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"version", version,
		"addr", cfg.Address(),
		"driver", cfg.Database.Driver,
		"rate_limit_enabled", cfg.Security.EnableRateLimit,
	)
	return cfg, logger, nil
}
