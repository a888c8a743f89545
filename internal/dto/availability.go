package dto

// OrderLine is one requested line item: a finished product and how many units
// of it the caller wants. Validated before it reaches the calculator.
type OrderLine struct {
	ProductID int `json:"productId" validate:"gt=0"`
	Quantity  int `json:"quantity" validate:"gt=0"`
}

type CheckAvailabilityRequest struct {
	CompanyID int         `json:"companyId" validate:"gt=0"`
	Lines     []OrderLine `json:"lines" validate:"required,min=1,max=100,dive"`
}

// ProductAvailability is the per-product verdict. Unconstrained marks a
// product without a recipe: no component limits it, so MaxQuantity carries no
// meaning and Available is always true.
type ProductAvailability struct {
	ProductID     int      `json:"productId"`
	Requested     int      `json:"requested"`
	Available     bool     `json:"available"`
	Unconstrained bool     `json:"unconstrained"`
	MaxQuantity   int      `json:"maxQuantity"`
	Warnings      []string `json:"warnings,omitempty"`
}

type AvailabilityReport struct {
	Available bool                  `json:"available"`
	Products  []ProductAvailability `json:"products"`
	Warnings  []string              `json:"warnings,omitempty"`
}
