package internal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id            TEXT PRIMARY KEY,
		original_name TEXT NOT NULL,
		extension     TEXT NOT NULL,
		size_bytes    INTEGER NOT NULL,
		duration_s    REAL NOT NULL DEFAULT 0,
		tags          TEXT NOT NULL DEFAULT '{}',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exports (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		bitrate_kbps INTEGER NOT NULL,
		segments     TEXT NOT NULL,
		items        TEXT NOT NULL,
		created_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exports_project ON exports(project_id, id)`,
}

// OpenDatabase opens (creating if needed) the project database and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenDatabase(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables used by Store if they do not exist
func Migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			name := strings.Fields(stmt)
			return fmt.Errorf("migration failed (%s): %w", strings.Join(name[:min(len(name), 6)], " "), err)
		}
	}
	return nil
}
