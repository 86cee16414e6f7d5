package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTable(t *testing.T, ms *MemoryStore, name string, rows ...Row) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ms.CreateTableIfMissing(ctx, name, []string{"User", "Item", "Quantity"}))
	for _, row := range rows {
		require.NoError(t, ms.AppendRow(ctx, name, row))
	}
}

func TestMemoryStoreMissingTable(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	_, err := ms.ReadTable(ctx, "nope")
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.ErrorIs(t, ms.AppendRow(ctx, "nope", Row{"a": "b"}), ErrTableNotFound)
	assert.ErrorIs(t, ms.WriteTable(ctx, "nope", nil), ErrTableNotFound)
	assert.ErrorIs(t, ms.DeleteRow(ctx, "nope", 0), ErrTableNotFound)
}

func TestMemoryStoreAppendAndRead(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	seedTable(t, ms, "Deposits",
		Row{"User": "Alice", "Item": "Heavy Belt", "Quantity": "3"},
		Row{"User": "Bob", "Item": "Stellar Amulet", "Quantity": "7"},
	)

	rows, err := ms.ReadTable(ctx, "Deposits")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["User"])
	assert.Equal(t, "Bob", rows[1]["User"])

	// Reads hand out copies, not the backing rows.
	rows[0]["User"] = "Mallory"
	again, err := ms.ReadTable(ctx, "Deposits")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again[0]["User"])
}

func TestMemoryStoreDeleteRowShiftsIndices(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	seedTable(t, ms, "Queue",
		Row{"User": "a"},
		Row{"User": "b"},
		Row{"User": "c"},
	)

	require.NoError(t, ms.DeleteRow(ctx, "Queue", 0))

	rows, err := ms.ReadTable(ctx, "Queue")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0]["User"])
	assert.Equal(t, "c", rows[1]["User"])

	assert.ErrorIs(t, ms.DeleteRow(ctx, "Queue", 2), ErrRowOutOfRange)
	assert.ErrorIs(t, ms.DeleteRow(ctx, "Queue", -1), ErrRowOutOfRange)
}

func TestMemoryStoreWriteTableReplacesRows(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	seedTable(t, ms, "Targets",
		Row{"Item": "old", "Target": "1"},
		Row{"Item": "older", "Target": "2"},
	)

	require.NoError(t, ms.WriteTable(ctx, "Targets", []Row{{"Item": "new", "Target": "9"}}))

	rows, err := ms.ReadTable(ctx, "Targets")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0]["Item"])
}

func TestMemoryStoreCreateTableIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	seedTable(t, ms, "Deposits", Row{"User": "Alice"})

	// A second create must not wipe the existing rows.
	require.NoError(t, ms.CreateTableIfMissing(ctx, "Deposits", []string{"User"}))

	rows, err := ms.ReadTable(ctx, "Deposits")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	seedTable(t, ms, "Deposits", Row{"User": "a"}, Row{"User": "b"})

	stats, err := ms.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", stats["backend"])

	counts, ok := stats["row_counts"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(2), counts["Deposits"])
}
