package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a handle on a SQLite database holding audit tables.
type Store struct {
	db    *sql.DB
	owned bool
}

// Open creates or opens a SQLite database at the given path.
// ":memory:" opens a private in-memory database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - FULL synchronous mode (audit rows must be durable on commit)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// The returned Store owns the connection; Close closes it.
func Open(path string) (*Store, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// exists per connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, owned: true}, nil
}

// Wrap uses a connection the caller owns. Close leaves it open.
func Wrap(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("wrap store: nil database")
	}
	return &Store{db: db}, nil
}

// Close closes the database connection if the store opened it.
func (s *Store) Close() error {
	if s.db == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TableExists reports whether schema.table exists. SQLite table names
// compare case-insensitively.
func (s *Store) TableExists(ctx context.Context, schema, table string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s.sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE",
		quoteIdent(schema),
	)
	var count int
	if err := s.db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, fmt.Errorf("table exists %s.%s: %w", schema, table, err)
	}
	return count > 0, nil
}

// CountRows returns the number of rows in schema.table.
func (s *Store) CountRows(ctx context.Context, schema, table string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM " + qualifiedName(schema, table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows %s.%s: %w", schema, table, err)
	}
	return count, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Row is one table row keyed by column name.
type Row map[string]any

// ReadRows returns every row of schema.table in insertion order, along with
// the column names in table order. BLOB and TEXT values come back as strings.
func (s *Store) ReadRows(ctx context.Context, schema, table string) ([]string, []Row, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+qualifiedName(schema, table)+" ORDER BY rowid ASC")
	if err != nil {
		return nil, nil, fmt.Errorf("read rows %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows %s.%s: %w", schema, table, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("read rows %s.%s: %w", schema, table, err)
		}
		row := make(Row, len(cols))
		for i, name := range cols {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read rows %s.%s: %w", schema, table, err)
	}
	return cols, out, nil
}
