package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"poe-item-bank/internal/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStore implements TableStore on MySQL using the same generic
// sheets/sheet_rows schema as the SQLite backend.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore connects to MySQL using the given DSN.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info().Msg("MySQL table store initialized")
	return &MySQLStore{db: db}, nil
}

func createMySQLSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sheets (
			name VARCHAR(64) PRIMARY KEY,
			headers TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sheet_rows (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sheet VARCHAR(64) NOT NULL,
			row_json TEXT NOT NULL,
			INDEX idx_sheet_rows_sheet (sheet)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *MySQLStore) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheets WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return count > 0, nil
}

// ReadTable returns all data rows of a table in insertion order.
func (s *MySQLStore) ReadTable(ctx context.Context, name string) ([]Row, error) {
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
func (s *MySQLStore) WriteTable(ctx context.Context, name string, newRows []Row) error {
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
func (s *MySQLStore) AppendRow(ctx context.Context, name string, row Row) error {
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
func (s *MySQLStore) DeleteRow(ctx context.Context, name string, index int) error {
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
func (s *MySQLStore) CreateTableIfMissing(ctx context.Context, name string, headers []string) error {
	rawHeaders, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT IGNORE INTO sheets (name, headers) VALUES (?, ?)`,
		name, string(rawHeaders))
	if err != nil {
		return fmt.Errorf("failed to create table %q: %w", name, err)
	}
	return nil
}

// Stats returns row counts per table.
func (s *MySQLStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "mysql"}

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

	return stats, rows.Err()
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Ensure MySQLStore implements TableStore
var _ TableStore = (*MySQLStore)(nil)
