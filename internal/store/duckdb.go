package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"sales-analytics/internal/config"
)

// DuckDB runs the same statements against an embedded database. An empty
// path opens an in-memory database shared by every pooled connection.
type DuckDB struct {
	db             *sql.DB
	acquireTimeout time.Duration
	logger         *slog.Logger
}

func NewDuckDB(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DuckDB, error) {
	db, err := sql.Open("duckdb", cfg.DuckDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxIdleTime(cfg.IdleTimeout)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	path := cfg.DuckDBPath
	if path == "" {
		path = ":memory:"
	}
	logger.Info("opened duckdb",
		"path", path,
		"max_conns", cfg.MaxConns,
		"idle_timeout", cfg.IdleTimeout,
	)

	return &DuckDB{
		db:             db,
		acquireTimeout: cfg.AcquireTimeout,
		logger:         logger,
	}, nil
}

func (d *DuckDB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return &sqlRows{rows: rows, conn: conn}, nil
}

func (d *DuckDB) Exec(ctx context.Context, query string, args ...any) error {
	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

func (d *DuckDB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DuckDB) Driver() string {
	return config.DriverDuckDB
}

func (d *DuckDB) Close() {
	if err := d.db.Close(); err != nil {
		d.logger.Warn("failed to close duckdb", "error", err)
	}
}

func (d *DuckDB) acquire(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, d.acquireTimeout)
	defer cancel()

	conn, err := d.db.Conn(acquireCtx)
	if err != nil {
		stats := d.db.Stats()
		d.logger.Warn("connection acquire failed",
			"error", err,
			"in_use", stats.InUse,
			"max_open", stats.MaxOpenConnections,
		)
		return nil, fmt.Errorf("unable to acquire connection: %w", err)
	}
	return conn, nil
}

type sqlRows struct {
	rows *sql.Rows
	conn *sql.Conn
	once sync.Once
}

func (r *sqlRows) Next() bool             { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *sqlRows) Err() error             { return r.rows.Err() }

func (r *sqlRows) Close() {
	r.once.Do(func() {
		_ = r.rows.Close()
		_ = r.conn.Close()
	})
}
