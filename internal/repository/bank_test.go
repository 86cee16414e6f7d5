package repository

import (
	"context"
	"testing"

	"poe-item-bank/internal/catalog"
	"poe-item-bank/internal/model"
	"poe-item-bank/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*store.MemoryStore, *BankRepository) {
	t.Helper()
	ms := store.NewMemoryStore()
	return ms, NewBankRepository(ms)
}

func TestLoadDepositsMissingTableReadsEmpty(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	assert.Empty(t, deposits)

	dupes, err := repo.LoadPendingDupes(ctx)
	require.NoError(t, err)
	assert.Empty(t, dupes)

	logs, err := repo.TailAdminLogs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestLoadDepositsLenientQuantityParsing(t *testing.T) {
	ctx := context.Background()
	ms, repo := newRepo(t)

	require.NoError(t, ms.CreateTableIfMissing(ctx, TableDeposits, DepositHeaders))
	cells := []string{"5", "12.0", "3.7", "", "n/a"}
	for _, q := range cells {
		require.NoError(t, ms.AppendRow(ctx, TableDeposits, store.Row{
			"User": "Alice", "Item": "Heavy Belt", "Quantity": q,
		}))
	}

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, len(cells))

	want := []int{5, 12, 3, 0, 0}
	for i, d := range deposits {
		assert.Equal(t, want[i], d.Quantity, "cell %q", cells[i])
	}
}

func TestAppendDepositCreatesTable(t *testing.T) {
	ctx := context.Background()
	ms, repo := newRepo(t)

	require.NoError(t, repo.AppendDeposit(ctx, model.Deposit{User: "Alice", Item: "Heavy Belt", Quantity: 3}))

	rows, err := ms.ReadTable(ctx, TableDeposits)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, store.Row{"User": "Alice", "Item": "Heavy Belt", "Quantity": "3"}, rows[0])
}

func TestLoadTargetsDefaultsForEveryItem(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)

	cfg, err := repo.LoadTargets(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.DefaultBankBuyPercent, cfg.BankBuyPercent)
	for _, item := range catalog.AllItems() {
		assert.Equal(t, model.DefaultTarget, cfg.Targets[item], item)
		assert.Equal(t, model.DefaultDivines, cfg.Divines[item], item)
	}
}

func TestLoadTargetsSettingsSentinelAndFallbacks(t *testing.T) {
	ctx := context.Background()
	ms, repo := newRepo(t)

	require.NoError(t, ms.CreateTableIfMissing(ctx, TableTargets, TargetHeaders))
	seed := []store.Row{
		{"Item": "Heavy Belt", "Target": "250", "Divines": "1.5"},
		// Spreadsheet-style float target and blank divines.
		{"Item": "Stellar Amulet", "Target": "40.0", "Divines": ""},
		// Garbage cells fall back to defaults.
		{"Item": "Waystone EXP", "Target": "soon", "Divines": "tbd"},
		{"Item": SettingsSentinel, "Target": "65", "Divines": ""},
	}
	for _, row := range seed {
		require.NoError(t, ms.AppendRow(ctx, TableTargets, row))
	}

	cfg, err := repo.LoadTargets(ctx)
	require.NoError(t, err)

	assert.Equal(t, 65, cfg.BankBuyPercent)
	assert.Equal(t, 250, cfg.Targets["Heavy Belt"])
	assert.Equal(t, 1.5, cfg.Divines["Heavy Belt"])
	assert.Equal(t, 40, cfg.Targets["Stellar Amulet"])
	assert.Equal(t, model.DefaultDivines, cfg.Divines["Stellar Amulet"])
	assert.Equal(t, model.DefaultTarget, cfg.Targets["Waystone EXP"])
	assert.Equal(t, model.DefaultDivines, cfg.Divines["Waystone EXP"])

	// The sentinel never leaks into the item maps.
	_, ok := cfg.Targets[SettingsSentinel]
	assert.False(t, ok)

	// Items absent from the table still get defaults.
	assert.Equal(t, model.DefaultTarget, cfg.Targets["Logbook level 79-80"])
}

func TestSaveTargetsRoundTrip(t *testing.T) {
	ctx := context.Background()
	ms, repo := newRepo(t)

	cfg, err := repo.LoadTargets(ctx)
	require.NoError(t, err)
	cfg.Targets["Heavy Belt"] = 250
	cfg.Divines["Heavy Belt"] = 2.25
	cfg.BankBuyPercent = 65

	require.NoError(t, repo.SaveTargets(ctx, cfg))

	// One row per catalog item plus the sentinel, sentinel last.
	rows, err := ms.ReadTable(ctx, TableTargets)
	require.NoError(t, err)
	require.Len(t, rows, len(catalog.AllItems())+1)
	last := rows[len(rows)-1]
	assert.Equal(t, SettingsSentinel, last["Item"])
	assert.Equal(t, "65", last["Target"])

	loaded, err := repo.LoadTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 65, loaded.BankBuyPercent)
	assert.Equal(t, 250, loaded.Targets["Heavy Belt"])
	assert.Equal(t, 2.25, loaded.Divines["Heavy Belt"])
	assert.Equal(t, model.DefaultTarget, loaded.Targets["Stellar Amulet"])
}

func TestTailAdminLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepo(t)

	for _, details := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AppendAdminLog(ctx, "POEconomics", model.ActionDeposit, details))
	}

	logs, err := repo.TailAdminLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Details)
	assert.Equal(t, "second", logs[1].Details)
	assert.Equal(t, "POEconomics", logs[0].AdminUser)
	assert.NotEmpty(t, logs[0].Timestamp)

	// n larger than the table returns everything.
	all, err := repo.TailAdminLogs(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
