// Package store provides a generic named-table abstraction over the backing
// persistence service. Tables are ordered lists of string-column rows, the
// way a spreadsheet tab holds them; there are no transactions and no
// row-level locks, so callers follow a read-recheck-write discipline.
package store

import "context"

// Row is one table row, mapping column name to cell value.
type Row map[string]string

// Errors returned by TableStore implementations.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrTableNotFound indicates the named table does not exist.
	ErrTableNotFound StoreError = "table not found"

	// ErrRowOutOfRange indicates a positional delete past the end of the table.
	ErrRowOutOfRange StoreError = "row index out of range"
)

// TableStore is the collaborator contract for the remote tabular store.
//
// DeleteRow is positional and 0-based over data rows; after a removal the
// indices of subsequent rows shift, so callers must re-read the table before
// acting on another index.
type TableStore interface {
	// ReadTable returns all data rows of a table in order.
	ReadTable(ctx context.Context, name string) ([]Row, error)

	// WriteTable overwrites the full contents of a table. No partial update.
	WriteTable(ctx context.Context, name string, rows []Row) error

	// AppendRow adds one row at the end of a table.
	AppendRow(ctx context.Context, name string, row Row) error

	// DeleteRow removes the row at the given 0-based position.
	DeleteRow(ctx context.Context, name string, index int) error

	// CreateTableIfMissing creates an empty table with the given header
	// columns. Creating an existing table is a no-op.
	CreateTableIfMissing(ctx context.Context, name string, headers []string) error

	// Stats returns implementation-specific statistics for diagnostics.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close releases the underlying connection.
	Close() error
}

// Clone returns an independent copy of a row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
