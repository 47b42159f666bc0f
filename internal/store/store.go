// Package store owns the database connection pool. Each query acquires a
// connection within the configured acquire timeout and hands it back when the
// returned Rows are closed.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"sales-analytics/internal/config"
)

// Rows is a forward-only result cursor. Close must be called once iteration
// ends; it releases the underlying connection.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Ping(ctx context.Context) error
	Driver() string
	Close()
}

// Open connects to the database selected by cfg.Driver and verifies it with a
// ping.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Querier, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg, logger)
	case config.DriverDuckDB:
		return NewDuckDB(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
