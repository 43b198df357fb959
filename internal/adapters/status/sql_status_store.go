package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/platform/db"
	"waypoint-route-service/internal/platform/obs"
)

// SQLStore is a SQL-backed StatusStore over the waypoint_status table.
type SQLStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLStore(conn *sql.DB, dialect db.Dialect) *SQLStore {
	return &SQLStore{DB: conn, Dialect: dialect}
}

// Load returns every stored status of a session.
func (s *SQLStore) Load(ctx context.Context, session string) (_ map[string]domain.Status, err error) {
	defer obs.Time(ctx, "status.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("status store: db is nil")
	}

	q := `
	SELECT system_name, status
	FROM waypoint_status
	WHERE session = ?;
	`
	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Dialect, q), session)
	if err != nil {
		return nil, fmt.Errorf("load statuses: query waypoint_status table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Status)
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("load statuses: scan rows: %w", err)
		}
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("load statuses: system %q: %w", name, err)
		}
		out[name] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load statuses: row iteration: %w", err)
	}

	return out, nil
}

// Save upserts statuses for a session in one transaction.
func (s *SQLStore) Save(ctx context.Context, session string, statuses map[string]domain.Status) (err error) {
	defer obs.Time(ctx, "status.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("status store: db is nil")
	}
	if session == "" {
		return errors.New("save statuses: session must not be empty")
	}
	if len(statuses) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save statuses: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Dialect, `
	INSERT INTO waypoint_status (session, system_name, status)
	VALUES (?, ?, ?)
	ON CONFLICT (session, system_name) DO UPDATE
	SET status = EXCLUDED.status;
	`))
	if err != nil {
		return fmt.Errorf("save statuses: db prepare: %w", err)
	}
	defer stmt.Close()

	for name, st := range statuses {
		if strings.TrimSpace(name) == "" {
			return errors.New("save statuses: empty system name")
		}
		if _, err := domain.ParseStatus(string(st)); err != nil {
			return fmt.Errorf("save statuses: system %q: %w", name, err)
		}
		if _, err := stmt.ExecContext(ctx, session, name, string(st)); err != nil {
			return fmt.Errorf("save statuses: system=%q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save statuses: commit: %w", err)
	}

	return nil
}
