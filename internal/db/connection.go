// Package db connects to the Postgres database holding the region table.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

// Connection holds the database connection
type Connection struct {
	DB *sql.DB
}

// Open connects to url, or to the PG* environment variables when url is
// empty, and checks the connection.
func Open(ctx context.Context, url string, maxConns int) (*Connection, error) {
	if url == "" {
		url = DSNFromEnv()
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns / 2)
	}

	return &Connection{DB: db}, nil
}

// DSNFromEnv builds a libpq key/value DSN from PGHOST, PGPORT, PGUSER,
// PGPASSWORD and PGDATABASE.
func DSNFromEnv() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnvOrDefault("PGHOST", "localhost"),
		getEnvOrDefault("PGPORT", "5432"),
		getEnvOrDefault("PGUSER", "postgres"),
		getEnvOrDefault("PGPASSWORD", "postgres"),
		getEnvOrDefault("PGDATABASE", "epipipeline"),
		getEnvOrDefault("PGSSLMODE", "disable"),
	)
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
