// Package repository converts between table-store rows and domain models.
// Numeric parsing fails soft: unreadable cells fall back to documented
// defaults instead of surfacing errors, since the backing sheet is edited by
// humans and other processes.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"poe-item-bank/internal/catalog"
	"poe-item-bank/internal/model"
	"poe-item-bank/internal/store"
)

// Table names within the backing store.
const (
	TableDeposits     = "Deposits"
	TableTargets      = "Targets"
	TablePendingDupes = "PendingDupes"
	TableAdminLogs    = "AdminLogs"
)

// SettingsSentinel is the Item value of the Targets row that carries the
// bank-buy percentage in its Target column.
const SettingsSentinel = "_SETTINGS"

// Column headers per table.
var (
	DepositHeaders  = []string{"User", "Item", "Quantity"}
	TargetHeaders   = []string{"Item", "Target", "Divines"}
	AdminLogHeaders = []string{"Timestamp", "AdminUser", "AdminAction", "Details"}
)

const logTimestampLayout = "2006-01-02 15:04:05"

// BankRepository is the data access layer for all bank tables.
type BankRepository struct {
	store store.TableStore
}

// NewBankRepository creates a repository over the given table store.
func NewBankRepository(ts store.TableStore) *BankRepository {
	return &BankRepository{store: ts}
}

// Store exposes the underlying table store for diagnostics.
func (r *BankRepository) Store() store.TableStore {
	return r.store
}

// parseQuantity mirrors the lenient numeric coercion of spreadsheet cells:
// integers, decimal strings ("12.0") and garbage all resolve to an int, with
// garbage becoming 0.
func parseQuantity(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseTarget(s string) int {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return model.DefaultTarget
}

func parseDivines(s string) float64 {
	if s == "" {
		return model.DefaultDivines
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return model.DefaultDivines
}

// LoadDeposits reads the full committed deposit table. A missing table reads
// as empty.
func (r *BankRepository) LoadDeposits(ctx context.Context) ([]model.Deposit, error) {
	rows, err := r.store.ReadTable(ctx, TableDeposits)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load deposits: %w", err)
	}

	deposits := make([]model.Deposit, 0, len(rows))
	for _, row := range rows {
		deposits = append(deposits, model.Deposit{
			User:     row["User"],
			Item:     row["Item"],
			Quantity: parseQuantity(row["Quantity"]),
		})
	}
	return deposits, nil
}

// AppendDeposit commits one deposit row, creating the table on first use.
func (r *BankRepository) AppendDeposit(ctx context.Context, d model.Deposit) error {
	if err := r.store.CreateTableIfMissing(ctx, TableDeposits, DepositHeaders); err != nil {
		return fmt.Errorf("append deposit: %w", err)
	}
	err := r.store.AppendRow(ctx, TableDeposits, store.Row{
		"User":     d.User,
		"Item":     d.Item,
		"Quantity": strconv.Itoa(d.Quantity),
	})
	if err != nil {
		return fmt.Errorf("append deposit: %w", err)
	}
	return nil
}

// DeleteDepositAt removes the committed row at the given position.
func (r *BankRepository) DeleteDepositAt(ctx context.Context, index int) error {
	if err := r.store.DeleteRow(ctx, TableDeposits, index); err != nil {
		return fmt.Errorf("delete deposit: %w", err)
	}
	return nil
}

// LoadTargets reads the target/value configuration, creating the table on
// first use. Missing or unparseable values fall back to defaults, and every
// catalog item is guaranteed an entry.
func (r *BankRepository) LoadTargets(ctx context.Context) (model.TargetConfig, error) {
	cfg := model.TargetConfig{
		Targets:        make(map[string]int),
		Divines:        make(map[string]float64),
		BankBuyPercent: model.DefaultBankBuyPercent,
	}

	if err := r.store.CreateTableIfMissing(ctx, TableTargets, TargetHeaders); err != nil {
		return cfg, fmt.Errorf("load targets: %w", err)
	}
	rows, err := r.store.ReadTable(ctx, TableTargets)
	if err != nil {
		return cfg, fmt.Errorf("load targets: %w", err)
	}

	for _, row := range rows {
		item := row["Item"]
		if item == SettingsSentinel {
			if f, err := strconv.ParseFloat(row["Target"], 64); err == nil {
				cfg.BankBuyPercent = int(f)
			}
			continue
		}
		cfg.Targets[item] = parseTarget(row["Target"])
		cfg.Divines[item] = parseDivines(row["Divines"])
	}

	for _, item := range catalog.AllItems() {
		if _, ok := cfg.Targets[item]; !ok {
			cfg.Targets[item] = model.DefaultTarget
		}
		if _, ok := cfg.Divines[item]; !ok {
			cfg.Divines[item] = model.DefaultDivines
		}
	}
	return cfg, nil
}

// SaveTargets overwrites the full target/value table, one row per catalog
// item plus the settings sentinel row.
func (r *BankRepository) SaveTargets(ctx context.Context, cfg model.TargetConfig) error {
	if err := r.store.CreateTableIfMissing(ctx, TableTargets, TargetHeaders); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}

	rows := make([]store.Row, 0, len(catalog.AllItems())+1)
	for _, item := range catalog.AllItems() {
		rows = append(rows, store.Row{
			"Item":    item,
			"Target":  strconv.Itoa(cfg.TargetFor(item)),
			"Divines": strconv.FormatFloat(cfg.DivinesFor(item), 'f', -1, 64),
		})
	}
	rows = append(rows, store.Row{
		"Item":    SettingsSentinel,
		"Target":  strconv.Itoa(cfg.BankBuyPercent),
		"Divines": "",
	})

	if err := r.store.WriteTable(ctx, TableTargets, rows); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	return nil
}

// LoadPendingDupes reads the pending-duplicates queue. A missing table reads
// as empty.
func (r *BankRepository) LoadPendingDupes(ctx context.Context) ([]model.PendingDuplicate, error) {
	rows, err := r.store.ReadTable(ctx, TablePendingDupes)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending duplicates: %w", err)
	}

	dupes := make([]model.PendingDuplicate, 0, len(rows))
	for _, row := range rows {
		dupes = append(dupes, model.PendingDuplicate{
			User:     row["User"],
			Item:     row["Item"],
			Quantity: parseQuantity(row["Quantity"]),
		})
	}
	return dupes, nil
}

// AppendPendingDupe queues one duplicate for admin review, creating the
// table on first use.
func (r *BankRepository) AppendPendingDupe(ctx context.Context, p model.PendingDuplicate) error {
	if err := r.store.CreateTableIfMissing(ctx, TablePendingDupes, DepositHeaders); err != nil {
		return fmt.Errorf("append pending duplicate: %w", err)
	}
	err := r.store.AppendRow(ctx, TablePendingDupes, store.Row{
		"User":     p.User,
		"Item":     p.Item,
		"Quantity": strconv.Itoa(p.Quantity),
	})
	if err != nil {
		return fmt.Errorf("append pending duplicate: %w", err)
	}
	return nil
}

// DeletePendingDupeAt removes the queued row at the given position.
func (r *BankRepository) DeletePendingDupeAt(ctx context.Context, index int) error {
	if err := r.store.DeleteRow(ctx, TablePendingDupes, index); err != nil {
		return fmt.Errorf("delete pending duplicate: %w", err)
	}
	return nil
}

// AppendAdminLog records one audit entry, creating the log table on first
// use. The log is append-only; nothing ever mutates or deletes entries.
func (r *BankRepository) AppendAdminLog(ctx context.Context, adminUser, action, details string) error {
	if err := r.store.CreateTableIfMissing(ctx, TableAdminLogs, AdminLogHeaders); err != nil {
		return fmt.Errorf("append admin log: %w", err)
	}
	err := r.store.AppendRow(ctx, TableAdminLogs, store.Row{
		"Timestamp":   time.Now().UTC().Format(logTimestampLayout),
		"AdminUser":   adminUser,
		"AdminAction": action,
		"Details":     details,
	})
	if err != nil {
		return fmt.Errorf("append admin log: %w", err)
	}
	return nil
}

// TailAdminLogs returns the last n log entries, newest first. A missing
// table reads as empty.
func (r *BankRepository) TailAdminLogs(ctx context.Context, n int) ([]model.AdminLogEntry, error) {
	rows, err := r.store.ReadTable(ctx, TableAdminLogs)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tail admin logs: %w", err)
	}

	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}

	entries := make([]model.AdminLogEntry, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		entries = append(entries, model.AdminLogEntry{
			Timestamp: rows[i]["Timestamp"],
			AdminUser: rows[i]["AdminUser"],
			Action:    rows[i]["AdminAction"],
			Details:   rows[i]["Details"],
		})
	}
	return entries, nil
}
