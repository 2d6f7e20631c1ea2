// Package store persists pipeline runs to Postgres. Persistence is
// optional: the pipeline produces its report either way, and the database
// only comes into play when DATABASE_URL is configured.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the shared connection pool from DATABASE_URL and verifies
// the database is reachable. Called once before the first run is saved;
// later calls are no-ops.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("invalid DATABASE_URL: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			err = fmt.Errorf("failed to open run store pool: %w", err)
			return
		}

		// Fail at startup, not mid-run when the first SaveRun fires.
		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			pool = nil
			err = fmt.Errorf("run store unreachable: %w", pingErr)
		}
	})
	return err
}

// GetPool returns the shared pool, or nil before InitDB succeeds.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool after the batch finishes.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
