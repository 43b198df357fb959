package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect is the database/sql driver name: "pgx" or "sqlite".
type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

// Open connects to a postgres database through the pgx stdlib driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open(string(Postgres), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSQLite opens a sqlite database file (or "file::memory:?cache=shared").
func OpenSQLite(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(string(SQLite), dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY under the HTTP server.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

// OpenDialect dispatches to Open or OpenSQLite.
func OpenDialect(d Dialect, dsn string) (*sql.DB, error) {
	switch d {
	case Postgres:
		return Open(dsn)
	case SQLite:
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("openDB: unsupported driver %q", d)
	}
}

// Rebind rewrites '?' placeholders to $1..$n for postgres. Queries must not
// contain literal question marks.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
