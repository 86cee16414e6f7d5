package model

// AdminLogEntry is one row of the append-only audit trail. Entries are only
// ever appended and tailed for display.
type AdminLogEntry struct {
	Timestamp string `json:"timestamp"`
	AdminUser string `json:"admin_user"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// Admin actions recorded in the log.
const (
	ActionDeposit          = "Deposit"
	ActionConfirmDuplicate = "Confirm Duplicate"
	ActionDeclineDuplicate = "Decline Duplicate"
	ActionDelete           = "Delete"
	ActionEditTargets      = "Edit Targets/Values"
)
