package domain

import "time"

// Component is a warehouse-held raw item. Prices are stored in minor currency
// units. Quantity is mutated only by the stock ledger, never directly.
type Component struct {
	ID          int
	CompanyID   int
	Name        string
	Quantity    int
	CostPrice   int
	RetailPrice int
	MinQuantity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectiveAvailable is the quantity allocatable to new orders: physical stock
// minus everything already held by active reservations.
func (c Component) EffectiveAvailable(reserved int) int {
	available := c.Quantity - reserved
	if available < 0 {
		return 0
	}
	return available
}

func (c Component) IsLowStock() bool {
	return c.Quantity <= c.MinQuantity
}

// CanApplyDelta reports whether a signed quantity change keeps stock non-negative.
func (c Component) CanApplyDelta(delta int) bool {
	return c.Quantity+delta >= 0
}
