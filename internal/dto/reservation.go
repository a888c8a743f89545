package dto

import "time"

type ReserveRequest struct {
	CompanyID int         `json:"companyId" validate:"gt=0"`
	Lines     []OrderLine `json:"lines" validate:"required,min=1,max=100,dive"`
}

// ReserveResult is all-or-nothing: when Reserved is false no reservation rows
// were written and Report explains which products fell short.
type ReserveResult struct {
	Reserved     bool                `json:"reserved"`
	OrderID      uint                `json:"orderId"`
	Report       *AvailabilityReport `json:"report"`
	ReservedRows []ReservedRow       `json:"reservedRows,omitempty"`
}

type ReservedRow struct {
	ComponentID      int `json:"componentId"`
	ReservedQuantity int `json:"reservedQuantity"`
}

type ReleaseResult struct {
	OrderID      uint  `json:"orderId"`
	RowsReleased int64 `json:"rowsReleased"`
}

type ReserveResponse struct {
	TraceID   string         `json:"traceId"`
	Result    *ReserveResult `json:"result"`
	Timestamp time.Time      `json:"timestamp"`
}
