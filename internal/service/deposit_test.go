package service

import (
	"context"
	"strconv"
	"testing"

	"poe-item-bank/internal/model"
	"poe-item-bank/internal/repository"
	"poe-item-bank/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookStore wraps a TableStore and runs a callback before every read, so
// tests can slip rows in between the Duplicate-Guard's two checks.
type hookStore struct {
	store.TableStore
	onRead func(name string)
}

func (h *hookStore) ReadTable(ctx context.Context, name string) ([]store.Row, error) {
	if h.onRead != nil {
		h.onRead(name)
	}
	return h.TableStore.ReadTable(ctx, name)
}

func depositRow(user, item string, qty int) store.Row {
	return store.Row{"User": user, "Item": item, "Quantity": strconv.Itoa(qty)}
}

func newDepositFixture(t *testing.T) (*store.MemoryStore, *repository.BankRepository, *DepositService) {
	t.Helper()
	ms := store.NewMemoryStore()
	repo := repository.NewBankRepository(ms)
	return ms, repo, NewDepositService(repo)
}

func TestSubmitCommitsNewDeposit(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	result, err := svc.Submit(ctx, "Alice", map[string]int{"Stellar Amulet": 5}, "POEconomics")
	require.NoError(t, err)

	require.Len(t, result.Committed, 1)
	assert.Empty(t, result.Queued)
	assert.Empty(t, result.Skipped)

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, model.Deposit{User: "Alice", Item: "Stellar Amulet", Quantity: 5}, deposits[0])

	logs, err := repo.TailAdminLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionDeposit, logs[0].Action)
	assert.Equal(t, "POEconomics", logs[0].AdminUser)
}

func TestSubmitExactMatchGoesToQueue(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	require.NoError(t, repo.AppendDeposit(ctx, model.Deposit{User: "Alice", Item: "Stellar Amulet", Quantity: 5}))

	result, err := svc.Submit(ctx, "Alice", map[string]int{"Stellar Amulet": 5}, "POEconomics")
	require.NoError(t, err)

	assert.Empty(t, result.Committed)
	require.Len(t, result.Queued, 1)

	// The committed table is untouched; the queue holds the duplicate.
	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, deposits, 1)

	pending, err := repo.LoadPendingDupes(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.PendingDuplicate{User: "Alice", Item: "Stellar Amulet", Quantity: 5}, pending[0])
}

func TestSubmitDuplicateMatchIsCaseInsensitiveOnUser(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	_, err := svc.Submit(ctx, "Alice", map[string]int{"Heavy Belt": 3}, "POEconomics")
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "alice", map[string]int{"Heavy Belt": 3}, "POEconomics")
	require.NoError(t, err)
	require.Len(t, result.Queued, 1)
	assert.Empty(t, result.Committed)

	// The stored display name keeps the casing of the first commit.
	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, "Alice", deposits[0].User)
}

func TestSubmitDifferentQuantityIsNotADuplicate(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	_, err := svc.Submit(ctx, "Alice", map[string]int{"Heavy Belt": 3}, "POEconomics")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "Alice", map[string]int{"Heavy Belt": 4}, "POEconomics")
	require.NoError(t, err)

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, deposits, 2)
}

func TestSubmitRecheckCatchesRaceLostRow(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	reads := 0
	hs := &hookStore{TableStore: ms}
	repo := repository.NewBankRepository(hs)
	svc := NewDepositService(repo)

	// A concurrent actor lands the identical row between the first check and
	// the pre-write recheck.
	hs.onRead = func(name string) {
		if name != repository.TableDeposits {
			return
		}
		reads++
		if reads == 2 {
			require.NoError(t, ms.CreateTableIfMissing(ctx, repository.TableDeposits, repository.DepositHeaders))
			require.NoError(t, ms.AppendRow(ctx, repository.TableDeposits, depositRow("Alice", "Stellar Amulet", 5)))
		}
	}

	result, err := svc.Submit(ctx, "Alice", map[string]int{"Stellar Amulet": 5}, "POEconomics")
	require.NoError(t, err)

	// Treated as already satisfied, not an error and not a second row.
	assert.Empty(t, result.Committed)
	assert.Empty(t, result.Queued)
	require.Len(t, result.Skipped, 1)

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, deposits, 1)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newDepositFixture(t)

	_, err := svc.Submit(ctx, "   ", map[string]int{"Heavy Belt": 1}, "POEconomics")
	assert.ErrorIs(t, err, ErrBlankUser)

	_, err = svc.Submit(ctx, "Alice", map[string]int{"Not An Item": 1}, "POEconomics")
	var unknown ErrUnknownItem
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Not An Item", unknown.Item)

	_, err = svc.Submit(ctx, "Alice", map[string]int{"Heavy Belt": -1}, "POEconomics")
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = svc.Submit(ctx, "Alice", map[string]int{"Heavy Belt": 0}, "POEconomics")
	assert.ErrorIs(t, err, ErrNoQuantities)
}

func TestConfirmPendingCommitsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	dupe := model.PendingDuplicate{User: "Alice", Item: "Heavy Belt", Quantity: 3}
	require.NoError(t, repo.AppendPendingDupe(ctx, dupe))

	result, err := svc.ConfirmPending(ctx, 0, dupe, "POEconomics")
	require.NoError(t, err)
	assert.True(t, result.Committed)

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)

	pending, err := repo.LoadPendingDupes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestConfirmPendingSkipsCommitWhenMatchAppeared(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	dupe := model.PendingDuplicate{User: "Alice", Item: "Heavy Belt", Quantity: 3}
	require.NoError(t, repo.AppendPendingDupe(ctx, dupe))

	// A concurrent actor committed the same row while the dupe sat queued.
	require.NoError(t, repo.AppendDeposit(ctx, dupe.AsDeposit()))

	result, err := svc.ConfirmPending(ctx, 0, dupe, "POEconomics")
	require.NoError(t, err)
	assert.False(t, result.Committed, "existing match must not be committed twice")

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, deposits, 1)

	pending, err := repo.LoadPendingDupes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "queue entry is removed either way")
}

func TestDeclinePendingNeverTouchesCommitted(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	committed := model.Deposit{User: "Alice", Item: "Heavy Belt", Quantity: 3}
	require.NoError(t, repo.AppendDeposit(ctx, committed))

	dupe := model.PendingDuplicate{User: "Alice", Item: "Heavy Belt", Quantity: 3}
	require.NoError(t, repo.AppendPendingDupe(ctx, dupe))

	require.NoError(t, svc.DeclinePending(ctx, 0, dupe, "POEconomics"))

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, committed, deposits[0])

	pending, err := repo.LoadPendingDupes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	logs, err := repo.TailAdminLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionDeclineDuplicate, logs[0].Action)
}

func TestConfirmPendingRejectsStaleIndex(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	first := model.PendingDuplicate{User: "Alice", Item: "Heavy Belt", Quantity: 3}
	second := model.PendingDuplicate{User: "Bob", Item: "Heavy Belt", Quantity: 9}
	require.NoError(t, repo.AppendPendingDupe(ctx, first))
	require.NoError(t, repo.AppendPendingDupe(ctx, second))

	// Someone else removed row 0; index 1 now points at nothing and index 0
	// holds a different row than the caller saw.
	require.NoError(t, repo.DeletePendingDupeAt(ctx, 0))

	_, err := svc.ConfirmPending(ctx, 1, second, "POEconomics")
	assert.ErrorIs(t, err, ErrQueueChanged)

	_, err = svc.ConfirmPending(ctx, 0, first, "POEconomics")
	assert.ErrorIs(t, err, ErrQueueChanged)

	// The queue itself is untouched by rejected requests.
	pending, err := repo.LoadPendingDupes(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0])
}

func TestDeleteDeposit(t *testing.T) {
	ctx := context.Background()
	_, repo, svc := newDepositFixture(t)

	keep := model.Deposit{User: "Bob", Item: "Heavy Belt", Quantity: 9}
	gone := model.Deposit{User: "Alice", Item: "Heavy Belt", Quantity: 3}
	require.NoError(t, repo.AppendDeposit(ctx, gone))
	require.NoError(t, repo.AppendDeposit(ctx, keep))

	require.NoError(t, svc.DeleteDeposit(ctx, gone, "POEconomics"))

	deposits, err := repo.LoadDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, keep, deposits[0])

	err = svc.DeleteDeposit(ctx, gone, "POEconomics")
	assert.ErrorIs(t, err, ErrDepositNotFound)
}
