package domain

import "time"

const (
	CheckStatusPending = "PENDING"
	CheckStatusApplied = "APPLIED"
)

// InventoryCheckSession is one physical count of a set of components.
// Differences are computed against the quantities current at creation time
// and turned into ledger adjustments when the session is applied.
type InventoryCheckSession struct {
	ID        uint
	CompanyID int
	Auditor   string
	Comment   string
	Status    string
	AppliedAt *time.Time
	CreatedAt time.Time
	Lines     []InventoryCheckLine
}

type InventoryCheckLine struct {
	ID              uint
	SessionID       uint
	ComponentID     int
	CurrentQuantity int
	ActualQuantity  int
	Difference      int
}
