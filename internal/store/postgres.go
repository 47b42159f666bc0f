package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sales-analytics/internal/config"
)

type Postgres struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	logger         *slog.Logger
}

func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MaxConnIdleTime = cfg.IdleTimeout

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Info("connected to postgres",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"max_conns", poolCfg.MaxConns,
		"idle_timeout", poolCfg.MaxConnIdleTime,
	)

	return &Postgres{
		pool:           pool,
		acquireTimeout: cfg.AcquireTimeout,
		logger:         logger,
	}, nil
}

func (p *Postgres) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return &pgRows{Rows: rows, conn: conn}, nil
}

func (p *Postgres) Exec(ctx context.Context, sql string, args ...any) error {
	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Driver() string {
	return config.DriverPostgres
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.pool.Acquire(acquireCtx)
	if err != nil {
		stat := p.pool.Stat()
		p.logger.Warn("connection acquire failed",
			"error", err,
			"acquired_conns", stat.AcquiredConns(),
			"max_conns", stat.MaxConns(),
		)
		return nil, fmt.Errorf("unable to acquire connection: %w", err)
	}
	return conn, nil
}

type pgRows struct {
	pgx.Rows
	conn *pgxpool.Conn
	once sync.Once
}

func (r *pgRows) Close() {
	r.once.Do(func() {
		r.Rows.Close()
		r.conn.Release()
	})
}
