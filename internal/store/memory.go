package store

import (
	"context"
	"sync"
)

// memTable is one in-memory named table.
type memTable struct {
	headers []string
	rows    []Row
}

// MemoryStore is an in-memory implementation of TableStore. Use it for
// development and tests; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

// NewMemoryStore creates an empty in-memory table store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memTable)}
}

// ReadTable returns a copy of all data rows of a table.
func (s *MemoryStore) ReadTable(ctx context.Context, name string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, ErrTableNotFound
	}

	out := make([]Row, len(t.rows))
	for i, row := range t.rows {
		out[i] = row.Clone()
	}
	return out, nil
}

// WriteTable overwrites the full contents of a table.
func (s *MemoryStore) WriteTable(ctx context.Context, name string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return ErrTableNotFound
	}

	copied := make([]Row, len(rows))
	for i, row := range rows {
		copied[i] = row.Clone()
	}
	t.rows = copied
	return nil
}

// AppendRow adds one row at the end of a table.
func (s *MemoryStore) AppendRow(ctx context.Context, name string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return ErrTableNotFound
	}
	t.rows = append(t.rows, row.Clone())
	return nil
}

// DeleteRow removes the row at the given 0-based position. Rows after the
// removed one shift down by one.
func (s *MemoryStore) DeleteRow(ctx context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return ErrTableNotFound
	}
	if index < 0 || index >= len(t.rows) {
		return ErrRowOutOfRange
	}
	t.rows = append(t.rows[:index], t.rows[index+1:]...)
	return nil
}

// CreateTableIfMissing creates an empty table with the given header columns.
func (s *MemoryStore) CreateTableIfMissing(ctx context.Context, name string, headers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[name]; ok {
		return nil
	}
	copied := make([]string, len(headers))
	copy(copied, headers)
	s.tables[name] = &memTable{headers: copied}
	return nil
}

// Stats returns row counts per table.
func (s *MemoryStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64, len(s.tables))
	for name, t := range s.tables {
		counts[name] = int64(len(t.rows))
	}
	return map[string]interface{}{
		"backend":    "memory",
		"row_counts": counts,
	}, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements TableStore
var _ TableStore = (*MemoryStore)(nil)
