package service

import (
	"context"
	"fmt"
	"strings"

	"poe-item-bank/internal/catalog"
	"poe-item-bank/internal/logger"
	"poe-item-bank/internal/model"
	"poe-item-bank/internal/repository"
)

// Duplicate-Guard: the backing store has no transactions and no
// compare-and-swap, so every mutation re-reads the live table immediately
// before writing. A race window between check and write remains; a
// submission lost to it lands in the pending queue or is treated as already
// satisfied, never reported as an error.

// Service-level errors the HTTP layer maps onto status codes.
type DepositError string

func (e DepositError) Error() string { return string(e) }

const (
	// ErrBlankUser indicates a submission without a username.
	ErrBlankUser DepositError = "user is required"

	// ErrNoQuantities indicates a submission with no positive quantity.
	ErrNoQuantities DepositError = "at least one item with quantity > 0 is required"

	// ErrNegativeQuantity indicates a negative quantity.
	ErrNegativeQuantity DepositError = "quantity must not be negative"

	// ErrQueueChanged indicates the pending queue no longer holds the
	// expected row at the given index. Callers must reload the queue.
	ErrQueueChanged DepositError = "pending queue changed, reload before retrying"

	// ErrDepositNotFound indicates no committed row matched the identity.
	ErrDepositNotFound DepositError = "deposit not found"
)

// ErrUnknownItem indicates a submission for an item outside the catalog.
type ErrUnknownItem struct{ Item string }

func (e ErrUnknownItem) Error() string {
	return fmt.Sprintf("unknown item %q", e.Item)
}

// SubmitResult reports the disposition of every submitted line.
type SubmitResult struct {
	// Committed rows passed both existence checks and were appended.
	Committed []model.Deposit `json:"committed"`

	// Queued rows matched an existing record on the first check and await
	// admin review.
	Queued []model.Deposit `json:"queued"`

	// Skipped rows appeared in the committed table between the two checks
	// and were treated as already satisfied.
	Skipped []model.Deposit `json:"skipped"`
}

// ConfirmResult reports the outcome of confirming one queued duplicate.
type ConfirmResult struct {
	// Committed is false when the matching row already existed and the
	// confirmation only removed the queue entry.
	Committed bool          `json:"committed"`
	Deposit   model.Deposit `json:"deposit"`
}

// DepositService runs the Duplicate-Guard workflow over the bank repository.
type DepositService struct {
	repo *repository.BankRepository
}

// NewDepositService creates a deposit service.
func NewDepositService(repo *repository.BankRepository) *DepositService {
	return &DepositService{repo: repo}
}

// matchExists tests for an exact committed match: case-insensitive username,
// exact item string, exact quantity.
func matchExists(deposits []model.Deposit, user, item string, qty int) bool {
	for _, d := range deposits {
		if strings.EqualFold(d.User, user) && d.Item == item && d.Quantity == qty {
			return true
		}
	}
	return false
}

// Submit runs one deposit submission through the Duplicate-Guard protocol:
// a fresh read decides queue-or-stage per line, then a second fresh read
// re-tests each staged line individually before it is appended. Quantities
// of zero are ignored; the stored username keeps the submitted casing.
func (s *DepositService) Submit(ctx context.Context, user string, quantities map[string]int, actor string) (*SubmitResult, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, ErrBlankUser
	}
	anyPositive := false
	for item, qty := range quantities {
		if !catalog.IsValidItem(item) {
			return nil, ErrUnknownItem{Item: item}
		}
		if qty < 0 {
			return nil, ErrNegativeQuantity
		}
		if qty > 0 {
			anyPositive = true
		}
	}
	if !anyPositive {
		return nil, ErrNoQuantities
	}

	// First check: fresh read of the live committed table.
	deposits, err := s.repo.LoadDeposits(ctx)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{}
	var staged []model.Deposit
	for _, item := range catalog.AllItems() {
		qty := quantities[item]
		if qty <= 0 {
			continue
		}
		if matchExists(deposits, user, item, qty) {
			dupe := model.PendingDuplicate{User: user, Item: item, Quantity: qty}
			if err := s.repo.AppendPendingDupe(ctx, dupe); err != nil {
				return nil, err
			}
			result.Queued = append(result.Queued, dupe.AsDeposit())
			logger.Info().Str("user", user).Str("item", item).Int("quantity", qty).
				Msg("duplicate deposit queued for review")
			continue
		}
		staged = append(staged, model.Deposit{User: user, Item: item, Quantity: qty})
	}

	if len(staged) == 0 {
		return result, nil
	}

	// Second check: another submission may have landed between the first
	// read and now. Each staged row is re-tested individually and appended
	// with its own store call.
	latest, err := s.repo.LoadDeposits(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range staged {
		if matchExists(latest, d.User, d.Item, d.Quantity) {
			result.Skipped = append(result.Skipped, d)
			continue
		}
		if err := s.repo.AppendDeposit(ctx, d); err != nil {
			return nil, err
		}
		details := fmt.Sprintf("%s: %dx %s", d.User, d.Quantity, d.Item)
		if err := s.repo.AppendAdminLog(ctx, actor, model.ActionDeposit, details); err != nil {
			return nil, err
		}
		result.Committed = append(result.Committed, d)
	}
	return result, nil
}

// Pending returns the current duplicate-review queue.
func (s *DepositService) Pending(ctx context.Context) ([]model.PendingDuplicate, error) {
	return s.repo.LoadPendingDupes(ctx)
}

// checkQueueRow verifies the queue still holds the expected row at index.
// Queue deletes are positional and indices shift after every removal, so a
// stale index is rejected instead of acting on the wrong row.
func (s *DepositService) checkQueueRow(ctx context.Context, index int, expected model.PendingDuplicate) error {
	dupes, err := s.repo.LoadPendingDupes(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(dupes) || dupes[index] != expected {
		return ErrQueueChanged
	}
	return nil
}

// ConfirmPending commits one queued duplicate after a fresh existence
// re-check. If a matching row appeared in the meantime the commit is skipped
// (informational, not an error); the queue entry is removed either way.
func (s *DepositService) ConfirmPending(ctx context.Context, index int, expected model.PendingDuplicate, actor string) (*ConfirmResult, error) {
	if err := s.checkQueueRow(ctx, index, expected); err != nil {
		return nil, err
	}

	deposits, err := s.repo.LoadDeposits(ctx)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{Deposit: expected.AsDeposit()}
	if !matchExists(deposits, expected.User, expected.Item, expected.Quantity) {
		if err := s.repo.AppendDeposit(ctx, expected.AsDeposit()); err != nil {
			return nil, err
		}
		details := fmt.Sprintf("%s - %s (%d)", expected.User, expected.Item, expected.Quantity)
		if err := s.repo.AppendAdminLog(ctx, actor, model.ActionConfirmDuplicate, details); err != nil {
			return nil, err
		}
		result.Committed = true
	} else {
		logger.Info().Str("user", expected.User).Str("item", expected.Item).
			Int("quantity", expected.Quantity).
			Msg("queued duplicate already committed, skipping")
	}

	if err := s.repo.DeletePendingDupeAt(ctx, index); err != nil {
		return nil, err
	}
	return result, nil
}

// DeclinePending discards one queued duplicate without committing anything.
func (s *DepositService) DeclinePending(ctx context.Context, index int, expected model.PendingDuplicate, actor string) error {
	if err := s.checkQueueRow(ctx, index, expected); err != nil {
		return err
	}
	if err := s.repo.DeletePendingDupeAt(ctx, index); err != nil {
		return err
	}
	details := fmt.Sprintf("%s - %s (%d)", expected.User, expected.Item, expected.Quantity)
	return s.repo.AppendAdminLog(ctx, actor, model.ActionDeclineDuplicate, details)
}

// DeleteDeposit permanently removes the first committed row identical to the
// given record. Identity is exact on all three fields, including username
// casing.
func (s *DepositService) DeleteDeposit(ctx context.Context, rec model.Deposit, actor string) error {
	deposits, err := s.repo.LoadDeposits(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i, d := range deposits {
		if d == rec {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrDepositNotFound
	}

	if err := s.repo.DeleteDepositAt(ctx, index); err != nil {
		return err
	}
	details := fmt.Sprintf("%s - %s (%d)", rec.User, rec.Item, rec.Quantity)
	return s.repo.AppendAdminLog(ctx, actor, model.ActionDelete, details)
}
