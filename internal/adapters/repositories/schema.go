package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"waypoint-route-service/internal/adapters/tabular"
	"waypoint-route-service/internal/ports"
)

// InitSchema creates the waypoint and status tables. The DDL is shared by
// sqlite and postgres.
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
	CREATE TABLE IF NOT EXISTS waypoint_sessions (
		session TEXT PRIMARY KEY,
		columns TEXT NOT NULL
	);
	`

	createRowsQuery := `
	CREATE TABLE IF NOT EXISTS waypoint_rows (
		session TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		cells TEXT NOT NULL,
		PRIMARY KEY (session, row_index)
	);
	`

	createStatusQuery := `
	CREATE TABLE IF NOT EXISTS waypoint_status (
		session TEXT NOT NULL,
		system_name TEXT NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (session, system_name)
	);
	`

	statements := []string{
		createSessionsQuery,
		createRowsQuery,
		createStatusQuery,
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

// SeedFromCSV loads a waypoint CSV file and stores it as the rows of session.
func SeedFromCSV(ctx context.Context, repo ports.WaypointRepository, session, csvPath string) (int, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return 0, errors.New("seed waypoints: session cannot be empty")
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("seed waypoints: open %q: %w", csvPath, err)
	}
	defer f.Close()

	table, err := tabular.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("seed waypoints: %w", err)
	}

	if err := repo.ReplaceRows(ctx, session, table); err != nil {
		return 0, fmt.Errorf("seed waypoints: %w", err)
	}
	return len(table.Rows), nil
}
