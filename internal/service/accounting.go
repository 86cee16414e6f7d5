package service

import (
	"math"
	"sort"

	"poe-item-bank/internal/model"
)

// The accounting engine is pure: it aggregates committed deposits against
// the target configuration and never touches storage.

// UserShare is one user's aggregated position in an item pool.
type UserShare struct {
	User     string  `json:"user"`
	Quantity int     `json:"quantity"`
	Fee      float64 `json:"fee"`
	Payout   float64 `json:"payout"`
}

// TotalFor sums the deposited quantity of one item across all records.
func TotalFor(deposits []model.Deposit, item string) int {
	total := 0
	for _, d := range deposits {
		if d.Item == item {
			total += d.Quantity
		}
	}
	return total
}

// CurrentValue is the divine value of the pool so far: total/target of one
// full stack's value. A non-positive target counts as zero value rather than
// an error.
func CurrentValue(total, target int, stackValue float64) float64 {
	if target <= 0 {
		return 0
	}
	return float64(total) / float64(target) * stackValue
}

// InstantSellPrice is the per-unit price the bank pays for immediate buyout:
// the per-unit share of the stack value scaled by the bank-buy percentage.
func InstantSellPrice(target int, stackValue float64, bankBuyPercent int) float64 {
	if target <= 0 {
		return 0
	}
	return (stackValue / float64(target)) * float64(bankBuyPercent) / 100
}

// Progress is the pool's fill fraction, clamped to 1.0 once the target is
// reached regardless of overshoot.
func Progress(total, target int) float64 {
	if total >= target {
		return 1.0
	}
	return math.Min(float64(total)/float64(target), 1.0)
}

// TargetReached reports whether the pool has collected its target.
func TargetReached(total, target int) bool {
	return total >= target
}

// Payout computes a user's fee and final payout for qty deposited units.
//
// The fee and the payout-after-fee are each independently floored to one
// decimal, so fee+payout does not always reconstruct the raw payout. This
// double rounding is preserved for compatibility with existing ledgers; do
// not "fix" it by deriving payout as raw-fee.
func Payout(qty, target int, stackValue float64) (fee, payout float64) {
	var raw float64
	if target > 0 {
		raw = float64(qty) / float64(target) * stackValue
	}
	fee = math.Floor(raw*0.10*10) / 10
	payout = math.Floor((raw-raw*0.10)*10) / 10
	return fee, payout
}

// PerUserBreakdown groups an item's deposits by exact stored username, sums
// quantities and computes each user's fee and payout. Users are ordered by
// summed quantity descending; ties break by username ascending.
func PerUserBreakdown(deposits []model.Deposit, item string, target int, stackValue float64) []UserShare {
	totals := make(map[string]int)
	for _, d := range deposits {
		if d.Item == item {
			totals[d.User] += d.Quantity
		}
	}

	shares := make([]UserShare, 0, len(totals))
	for user, qty := range totals {
		fee, payout := Payout(qty, target, stackValue)
		shares = append(shares, UserShare{User: user, Quantity: qty, Fee: fee, Payout: payout})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Quantity != shares[j].Quantity {
			return shares[i].Quantity > shares[j].Quantity
		}
		return shares[i].User < shares[j].User
	})
	return shares
}
