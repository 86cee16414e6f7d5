package model

// Default values applied when a Targets row is missing or unparseable.
const (
	DefaultTarget                 = 100
	DefaultDivines        float64 = 0
	DefaultBankBuyPercent         = 80
)

// TargetConfig holds the per-item collection targets, the divine value of one
// full target's worth of each item, and the bank's instant-buy percentage.
type TargetConfig struct {
	Targets        map[string]int     `json:"targets"`
	Divines        map[string]float64 `json:"divines"`
	BankBuyPercent int                `json:"bank_buy_percent"`
}

// TargetFor returns the configured target for an item, falling back to the
// default for items that were never configured.
func (c TargetConfig) TargetFor(item string) int {
	if t, ok := c.Targets[item]; ok {
		return t
	}
	return DefaultTarget
}

// DivinesFor returns the configured stack value for an item.
func (c TargetConfig) DivinesFor(item string) float64 {
	if d, ok := c.Divines[item]; ok {
		return d
	}
	return DefaultDivines
}
