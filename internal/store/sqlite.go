package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"poe-item-bank/internal/logger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements TableStore on a local SQLite file. Tables live in a
// generic two-table schema (sheets + sheet_rows) so new named tables need no
// DDL. Thread-safe with WAL mode.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("SQLite table store initialized")
	return &SQLiteStore{db: db}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS sheets (
		name TEXT PRIMARY KEY,
		headers TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sheet_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sheet TEXT NOT NULL,
		row_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet);
	`
	_, err := db.Exec(query)
	return err
}

func (s *SQLiteStore) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheets WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return count > 0, nil
}

// ReadTable returns all data rows of a table in insertion order.
func (s *SQLiteStore) ReadTable(ctx context.Context, name string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTableNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM sheet_rows WHERE sheet = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", name, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := Row{}
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("corrupt row in table %q: %w", name, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// WriteTable overwrites the full contents of a table.
func (s *SQLiteStore) WriteTable(ctx context.Context, name string, newRows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTableNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet = ?`, name); err != nil {
		return fmt.Errorf("failed to clear table %q: %w", name, err)
	}
	for _, row := range newRows {
		raw, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet, row_json) VALUES (?, ?)`, name, string(raw)); err != nil {
			return fmt.Errorf("failed to write table %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// AppendRow adds one row at the end of a table.
func (s *SQLiteStore) AppendRow(ctx context.Context, name string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTableNotFound
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (sheet, row_json) VALUES (?, ?)`, name, string(raw))
	if err != nil {
		return fmt.Errorf("failed to append to table %q: %w", name, err)
	}
	return nil
}

// DeleteRow removes the row at the given 0-based position.
func (s *SQLiteStore) DeleteRow(ctx context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTableNotFound
	}
	if index < 0 {
		return ErrRowOutOfRange
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM sheet_rows WHERE sheet = ? ORDER BY id LIMIT 1 OFFSET ?`,
		name, index).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrRowOutOfRange
	}
	if err != nil {
		return fmt.Errorf("failed to locate row %d in table %q: %w", index, name, err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sheet_rows WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete row %d in table %q: %w", index, name, err)
	}
	return nil
}

// CreateTableIfMissing creates an empty table with the given header columns.
func (s *SQLiteStore) CreateTableIfMissing(ctx context.Context, name string, headers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawHeaders, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheets (name, headers) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, string(rawHeaders))
	if err != nil {
		return fmt.Errorf("failed to create table %q: %w", name, err)
	}
	return nil
}

// Stats returns row counts per table plus database size.
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{"backend": "sqlite"}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sheet, COUNT(*) FROM sheet_rows GROUP BY sheet`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var sheet string
		var count int64
		if err := rows.Scan(&sheet, &count); err != nil {
			return nil, err
		}
		counts[sheet] = count
	}
	stats["row_counts"] = counts

	var pageCount, pageSize int64
	s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements TableStore
var _ TableStore = (*SQLiteStore)(nil)
