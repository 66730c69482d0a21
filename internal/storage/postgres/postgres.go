// Package postgres persists finished encounter reports using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltfall/tactics/internal/config"
)

// Pool wraps the pgx connection pool behind the report store.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the report database described by cfg.
//
// Precondition: cfg must carry valid connection parameters.
// Postcondition: the returned Pool has answered one ping and is ready for
// queries; the caller owns Close.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing report store DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening report store pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging report store: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health reports whether the database still answers within timeout.
//
// Precondition: the pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every pooled connection.
//
// Postcondition: the pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the underlying pgxpool.Pool to repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
