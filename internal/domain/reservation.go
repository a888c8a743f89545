package domain

import "time"

// Reservation is a soft hold: component quantity spoken-for by an order but
// not yet physically deducted. Multiple rows may exist for the same
// (order, component) pair; readers always aggregate by summing.
type Reservation struct {
	ID               uint
	OrderID          uint
	ComponentID      int
	ReservedQuantity int
	CreatedAt        time.Time
}
