package domain

// BOMLine is one bill-of-materials entry: how many units of a component go
// into one unit of a finished product. Optional lines never block production.
// Written by catalog management; read-only inside this service.
type BOMLine struct {
	ID              int
	ProductID       int
	ComponentID     int
	QuantityPerUnit int
	IsOptional      bool
}
