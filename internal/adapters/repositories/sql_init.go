package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		total_packages INTEGER NOT NULL,
		scanned_packages INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		color TEXT NOT NULL,
		assigned_to_id TEXT NOT NULL DEFAULT '',
		assigned_to_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		total_packages INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP,
		finished_at TIMESTAMP
	);
	`

	createAssignmentsQuery := `
	CREATE TABLE IF NOT EXISTS package_assignments (
		barcode TEXT PRIMARY KEY,
		route_id TEXT NOT NULL REFERENCES routes(route_id),
		sequence INTEGER NOT NULL,
		address TEXT NOT NULL
	);
	`

	createScansQuery := `
	CREATE TABLE IF NOT EXISTS scans (
		session_id TEXT NOT NULL,
		barcode TEXT NOT NULL,
		scanned_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, barcode)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_package_assignments_route
	ON package_assignments(route_id);
	`

	statements := []string{
		createSessionsQuery,
		createRoutesQuery,
		createAssignmentsQuery,
		createScansQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
