// Package db opens the PostgreSQL connection used by the database-backed
// user repository and makes sure its schema exists.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// position keeps the collection order; id is not a key because the
// collection, not the table, owns id assignment.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    position BIGINT NOT NULL,
    id BIGINT NOT NULL,
    firstname TEXT NOT NULL DEFAULT '',
    secondname TEXT NOT NULL DEFAULT '',
    age DOUBLE PRECISION NOT NULL DEFAULT 0,
    city TEXT NOT NULL DEFAULT ''
);
`

func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
