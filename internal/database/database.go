// Package database wraps a *sql.DB over lib/pq. Services hold a
// *database.DB and call Query/QueryRow/Exec/Begin directly with
// $1-style placeholders.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB is a thin handle around *sql.DB. It exists as its own type (rather than
// services depending on *sql.DB directly) so the composition root can later
// add instrumentation (query logging, metrics) in one place.
type DB struct {
	*sql.DB
}

// Open connects to Postgres via lib/pq and verifies connectivity.
func Open(databaseURL string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{DB: sqlDB}, nil
}
