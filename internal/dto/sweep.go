package dto

// SweepRequest drives the janitor: orders older than MaxAgeHours in an
// abandoned-candidate status get their reservations released. DryRun only
// reports what would be released.
type SweepRequest struct {
	MaxAgeHours int  `json:"maxAgeHours" validate:"gt=0"`
	DryRun      bool `json:"dryRun"`
}

type SweepEntry struct {
	OrderID          uint    `json:"orderId"`
	OrderStatus      string  `json:"orderStatus"`
	AgeHours         float64 `json:"ageHours"`
	ReservationRows  int     `json:"reservationRows"`
	ReservedQuantity int     `json:"reservedQuantity"`
	Released         bool    `json:"released"`
	Error            string  `json:"error,omitempty"`
}

type SweepReport struct {
	MaxAgeHours      int          `json:"maxAgeHours"`
	DryRun           bool         `json:"dryRun"`
	OrdersExamined   int          `json:"ordersExamined"`
	OrdersReleased   int          `json:"ordersReleased"`
	RowsReleased     int64        `json:"rowsReleased"`
	Failures         int          `json:"failures"`
	Entries          []SweepEntry `json:"entries"`
}

// AgeBucket is one bar of the reservation-age histogram exposed by the
// janitor's statistics mode.
type AgeBucket struct {
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}

type ReservationStats struct {
	TotalRows     int         `json:"totalRows"`
	TotalQuantity int         `json:"totalQuantity"`
	Buckets       []AgeBucket `json:"buckets"`
}
