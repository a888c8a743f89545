package domain

import "time"

type MovementKind string

const (
	MovementDelivery    MovementKind = "DELIVERY"
	MovementSale        MovementKind = "SALE"
	MovementWriteOff    MovementKind = "WRITE_OFF"
	MovementPriceChange MovementKind = "PRICE_CHANGE"
	MovementAdjustment  MovementKind = "INVENTORY_ADJUSTMENT"
)

func (k MovementKind) IsValid() bool {
	switch k {
	case MovementDelivery, MovementSale, MovementWriteOff, MovementPriceChange, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is one append-only ledger entry. BalanceAfter snapshots the
// component quantity immediately after the entry; rows are never updated or
// deleted, so replaying QuantityChange in creation order must reproduce the
// component's current quantity.
type StockMovement struct {
	ID             uint
	ComponentID    int
	Kind           MovementKind
	QuantityChange int
	BalanceAfter   int
	Description    string
	OrderID        *uint
	CreatedAt      time.Time
}
