// Package database wraps the pgx connection pool backing the search
// projection, adapted from the teacher repo's internal/database
// package: same New()/Close() shape, generalized to take a configured
// max-conns instead of a hardcoded value. Migration running is left to
// the ingestion/backfill system (spec §1 non-goal), not the core.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pooled connection to the relational store backing the
// search projection.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pgx pool against dbURL with the given bounded max
// connections (§5: "Database connections are pooled with a bounded
// maximum").
func New(ctx context.Context, dbURL string, maxConns int32) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database url required")
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.Pool.Close()
}
