package domain

import "time"

// Order is owned by the order-management flow outside this engine; only the
// fields the reservation lifecycle needs are mapped here.
type Order struct {
	ID        uint
	CompanyID int
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	OrderStatusPending   = "PENDING"
	OrderStatusCreated   = "CREATED"
	OrderStatusPaid      = "PAID"
	OrderStatusAssembled = "ASSEMBLED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCanceled  = "CANCELED"
)

// AbandonedCandidateStatuses are the non-final states the janitor sweeps:
// orders created but never paid, and orders explicitly canceled.
var AbandonedCandidateStatuses = []string{OrderStatusPending, OrderStatusCanceled}
