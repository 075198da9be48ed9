package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// TableDefinitions contains the SQL statements to create the database tables.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id VARCHAR(64) NOT NULL,
		workspace_id VARCHAR(64) NOT NULL,
		name VARCHAR(64) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		schema JSONB NOT NULL,
		html_key VARCHAR(255) NOT NULL DEFAULT '',
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (workspace_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_templates_workspace_updated
		ON templates (workspace_id, updated_at DESC)`,
}

// Connect opens a Postgres connection and verifies it.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates all necessary database tables if they don't exist.
func EnsureSchema(db *sql.DB) error {
	for _, query := range TableDefinitions {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
