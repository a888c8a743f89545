package domain

import "time"

// Product is a finished catalog item assembled from components. Catalog CRUD
// lives elsewhere; the engine only reads products to resolve recipes.
type Product struct {
	ID        int
	CompanyID int
	Name      string
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
