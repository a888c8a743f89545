package dto

import (
	"time"

	"bloomstock/internal/domain"
)

// MovementInput is the normalized parameter set for one ledger append.
// Delta kinds use QuantityChange; INVENTORY_ADJUSTMENT carries the absolute
// NewQuantity and the delta is computed inside the ledger transaction.
type MovementInput struct {
	ComponentID    int
	CompanyID      int
	Kind           domain.MovementKind
	QuantityChange int
	NewQuantity    int
	NewCostPrice   *int
	NewRetailPrice *int
	Description    string
	OrderID        *uint
}

type DeliveryRequest struct {
	CompanyID   int    `json:"companyId" validate:"gt=0"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	Description string `json:"description"`
}

type SaleRequest struct {
	CompanyID   int    `json:"companyId" validate:"gt=0"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	Description string `json:"description"`
	OrderID     *uint  `json:"orderId,omitempty"`
}

type WriteOffRequest struct {
	CompanyID int    `json:"companyId" validate:"gt=0"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Reason    string `json:"reason" validate:"required"`
}

type PriceChangeRequest struct {
	CompanyID      int  `json:"companyId" validate:"gt=0"`
	NewCostPrice   *int `json:"newCostPrice,omitempty"`
	NewRetailPrice *int `json:"newRetailPrice,omitempty"`
}

type MovementDTO struct {
	ID             uint      `json:"id"`
	ComponentID    int       `json:"componentId"`
	Kind           string    `json:"kind"`
	QuantityChange int       `json:"quantityChange"`
	BalanceAfter   int       `json:"balanceAfter"`
	Description    string    `json:"description"`
	OrderID        *uint     `json:"orderId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type LowStockComponentDTO struct {
	ComponentID int    `json:"componentId"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"minQuantity"`
}
