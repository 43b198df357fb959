package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/platform/db"
	"waypoint-route-service/internal/platform/obs"
)

// SQL-backed implementation of the WaypointRepository port.
// Cells and column names are stored as JSON arrays so any input schema fits.
type SQLWaypointRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLWaypointRepository(conn *sql.DB, dialect db.Dialect) *SQLWaypointRepository {
	return &SQLWaypointRepository{DB: conn, Dialect: dialect}
}

// Return the rows stored for a session in input order. Unknown sessions
// yield domain.ErrNotFound.
func (s *SQLWaypointRepository) ListRows(ctx context.Context, session string) (_ domain.Table, err error) {
	defer obs.Time(ctx, "waypoints.ListRows")(&err)

	if s.DB == nil {
		return domain.Table{}, errors.New("sql waypoint repository: DB is nil")
	}

	var columnsJSON string
	err = s.DB.QueryRowContext(ctx,
		db.Rebind(s.Dialect, `SELECT columns FROM waypoint_sessions WHERE session = ?;`),
		session,
	).Scan(&columnsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Table{}, fmt.Errorf("list rows: session %q: %w", session, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("list rows: query waypoint_sessions table: %w", err)
	}

	var table domain.Table
	if err := json.Unmarshal([]byte(columnsJSON), &table.Columns); err != nil {
		return domain.Table{}, fmt.Errorf("list rows: decode columns: %w", err)
	}

	query := `
	SELECT
		cells
	FROM waypoint_rows
	WHERE session = ?
	ORDER BY row_index;
	`
	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Dialect, query), session)
	if err != nil {
		return domain.Table{}, fmt.Errorf("list rows: query waypoint_rows table: %w", err)
	}
	defer rows.Close()

	table.Rows = make([][]string, 0, 64)
	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return domain.Table{}, fmt.Errorf("list rows: scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return domain.Table{}, fmt.Errorf("list rows: decode row %d: %w", len(table.Rows), err)
		}
		table.Rows = append(table.Rows, cells)
	}

	if err := rows.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("list rows: row iteration: %w", err)
	}

	return table, nil
}

// Replace all rows stored for a session in one transaction.
func (s *SQLWaypointRepository) ReplaceRows(ctx context.Context, session string, table domain.Table) (err error) {
	defer obs.Time(ctx, "waypoints.ReplaceRows")(&err)

	if s.DB == nil {
		return errors.New("sql waypoint repository: DB is nil")
	}
	if session == "" {
		return errors.New("replace rows: session must not be empty")
	}

	columnsJSON, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("replace rows: encode columns: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace rows: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, db.Rebind(s.Dialect, `DELETE FROM waypoint_rows WHERE session = ?;`), session); err != nil {
		return fmt.Errorf("replace rows: clear rows: %w", err)
	}

	upsertSession := `
	INSERT INTO waypoint_sessions (session, columns)
	VALUES (?, ?)
	ON CONFLICT (session) DO UPDATE
	SET columns = EXCLUDED.columns;
	`
	if _, err := tx.ExecContext(ctx, db.Rebind(s.Dialect, upsertSession), session, string(columnsJSON)); err != nil {
		return fmt.Errorf("replace rows: upsert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Dialect, `
	INSERT INTO waypoint_rows (session, row_index, cells)
	VALUES (?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("replace rows: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, cells := range table.Rows {
		cellsJSON, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("replace rows: encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, session, i, string(cellsJSON)); err != nil {
			return fmt.Errorf("replace rows: insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace rows: commit tx: %w", err)
	}

	return nil
}
