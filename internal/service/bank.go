package service

import (
	"context"
	"fmt"
	"sort"

	"poe-item-bank/internal/catalog"
	"poe-item-bank/internal/model"
	"poe-item-bank/internal/repository"
)

// ConfigError is a sentinel error type for target/settings validation.
type ConfigError string

func (e ConfigError) Error() string { return string(e) }

const (
	// ErrBadBankBuyPercent indicates a bank-buy percentage outside 10-100.
	ErrBadBankBuyPercent ConfigError = "bank buy percent must be between 10 and 100"

	// ErrBadTarget indicates a target below 1.
	ErrBadTarget ConfigError = "targets must be at least 1"

	// ErrBadDivines indicates a negative stack value.
	ErrBadDivines ConfigError = "stack values must not be negative"
)

// ItemReport is the computed state of one item pool.
type ItemReport struct {
	Item             string      `json:"item"`
	Total            int         `json:"total"`
	Target           int         `json:"target"`
	StackValue       float64     `json:"stack_value"`
	CurrentValue     float64     `json:"current_value"`
	InstantSellPrice float64     `json:"instant_sell_price"`
	Progress         float64     `json:"progress"`
	TargetReached    bool        `json:"target_reached"`
	Users            []UserShare `json:"users"`
}

// CategoryReport groups item reports the way the catalog groups items.
type CategoryReport struct {
	Category string       `json:"category"`
	Items    []ItemReport `json:"items"`
}

// BankService exposes the read/report side of the bank plus the admin
// configuration mutations.
type BankService struct {
	repo *repository.BankRepository
}

// NewBankService creates a bank service.
func NewBankService(repo *repository.BankRepository) *BankService {
	return &BankService{repo: repo}
}

// Overview aggregates the full deposit table against the target
// configuration. Within each category items are ordered by total deposited
// descending, catalog order on ties.
func (s *BankService) Overview(ctx context.Context) ([]CategoryReport, error) {
	deposits, err := s.repo.LoadDeposits(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.repo.LoadTargets(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]CategoryReport, 0, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		items := make([]ItemReport, 0, len(cat.Items))
		for _, item := range cat.Items {
			total := TotalFor(deposits, item)
			target := cfg.TargetFor(item)
			stackValue := cfg.DivinesFor(item)
			items = append(items, ItemReport{
				Item:             item,
				Total:            total,
				Target:           target,
				StackValue:       stackValue,
				CurrentValue:     CurrentValue(total, target, stackValue),
				InstantSellPrice: InstantSellPrice(target, stackValue, cfg.BankBuyPercent),
				Progress:         Progress(total, target),
				TargetReached:    TargetReached(total, target),
				Users:            PerUserBreakdown(deposits, item, target, stackValue),
			})
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Total > items[j].Total
		})
		reports = append(reports, CategoryReport{Category: cat.Name, Items: items})
	}
	return reports, nil
}

// Deposits lists committed deposits, optionally filtered to one item.
func (s *BankService) Deposits(ctx context.Context, item string) ([]model.Deposit, error) {
	if item != "" && !catalog.IsValidItem(item) {
		return nil, ErrUnknownItem{Item: item}
	}
	deposits, err := s.repo.LoadDeposits(ctx)
	if err != nil {
		return nil, err
	}
	if item == "" {
		return deposits, nil
	}
	filtered := make([]model.Deposit, 0, len(deposits))
	for _, d := range deposits {
		if d.Item == item {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// Targets returns the current target/value configuration.
func (s *BankService) Targets(ctx context.Context) (model.TargetConfig, error) {
	return s.repo.LoadTargets(ctx)
}

// UpdateTargets validates and overwrites the target/value/settings table.
// Items absent from the request keep their current values; the full table is
// rewritten either way.
func (s *BankService) UpdateTargets(ctx context.Context, targets map[string]int, divines map[string]float64, bankBuyPercent int, actor string) (model.TargetConfig, error) {
	if bankBuyPercent < 10 || bankBuyPercent > 100 {
		return model.TargetConfig{}, ErrBadBankBuyPercent
	}
	for item, t := range targets {
		if !catalog.IsValidItem(item) {
			return model.TargetConfig{}, ErrUnknownItem{Item: item}
		}
		if t < 1 {
			return model.TargetConfig{}, ErrBadTarget
		}
	}
	for item, d := range divines {
		if !catalog.IsValidItem(item) {
			return model.TargetConfig{}, ErrUnknownItem{Item: item}
		}
		if d < 0 {
			return model.TargetConfig{}, ErrBadDivines
		}
	}

	cfg, err := s.repo.LoadTargets(ctx)
	if err != nil {
		return model.TargetConfig{}, err
	}
	for item, t := range targets {
		cfg.Targets[item] = t
	}
	for item, d := range divines {
		cfg.Divines[item] = d
	}
	cfg.BankBuyPercent = bankBuyPercent

	if err := s.repo.SaveTargets(ctx, cfg); err != nil {
		return model.TargetConfig{}, err
	}
	details := fmt.Sprintf("Admin updated targets or values (bank buy %d%%).", bankBuyPercent)
	if err := s.repo.AppendAdminLog(ctx, actor, model.ActionEditTargets, details); err != nil {
		return model.TargetConfig{}, err
	}
	return cfg, nil
}

// Logs returns the last n admin log entries, newest first.
func (s *BankService) Logs(ctx context.Context, n int) ([]model.AdminLogEntry, error) {
	return s.repo.TailAdminLogs(ctx, n)
}
