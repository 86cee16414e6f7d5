package model

// Deposit is one committed contribution of a catalog item. Multiple deposits
// may share (user, item); they are never merged.
type Deposit struct {
	User     string `json:"user"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// PendingDuplicate is a submitted deposit that exactly matched an existing
// committed record. It sits in a separate queue until an admin confirms or
// declines it.
type PendingDuplicate struct {
	User     string `json:"user"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// AsDeposit converts the queued row back into a committable deposit.
func (p PendingDuplicate) AsDeposit() Deposit {
	return Deposit{User: p.User, Item: p.Item, Quantity: p.Quantity}
}
