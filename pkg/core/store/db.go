// Package store persists finalized analyses in Postgres, one JSONB document
// per client. The pool is process-wide and initialized once.
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

// InitDB initializes the connection pool from the DATABASE_URL environment
// variable and ensures the analyses table exists.
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
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}

		_, err = pool.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS financial_analysis (
				client_id     TEXT PRIMARY KEY,
				analysis_id   TEXT NOT NULL,
				analysis_json JSONB NOT NULL,
				updated_at    TIMESTAMPTZ NOT NULL
			);
		`)
	})
	return err
}

// GetPool returns the database connection pool.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
