package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type mockComponentRepository struct {
	FindByIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, id int, companyID int) (*domain.Component, error)
	UpdateQuantityFunc    func(ctx context.Context, tx *sql.Tx, id int, quantity int) error
	UpdatePricesFunc      func(ctx context.Context, tx *sql.Tx, id int, costPrice, retailPrice *int) error
	FindLowStockFunc      func(ctx context.Context, companyID int) ([]domain.Component, error)
}

func (m *mockComponentRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int, companyID int) (*domain.Component, error) {
	return m.FindByIDForUpdateFunc(ctx, tx, id, companyID)
}

func (m *mockComponentRepository) UpdateQuantity(ctx context.Context, tx *sql.Tx, id int, quantity int) error {
	return m.UpdateQuantityFunc(ctx, tx, id, quantity)
}

func (m *mockComponentRepository) UpdatePrices(ctx context.Context, tx *sql.Tx, id int, costPrice, retailPrice *int) error {
	return m.UpdatePricesFunc(ctx, tx, id, costPrice, retailPrice)
}

func (m *mockComponentRepository) FindLowStock(ctx context.Context, companyID int) ([]domain.Component, error) {
	return m.FindLowStockFunc(ctx, companyID)
}

type mockMovementRepository struct {
	InsertFunc          func(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (uint, error)
	ListByComponentFunc func(ctx context.Context, componentID int, limit int) ([]domain.StockMovement, error)
	inserted            []domain.StockMovement
}

func (m *mockMovementRepository) Insert(ctx context.Context, tx *sql.Tx, mv domain.StockMovement) (uint, error) {
	m.inserted = append(m.inserted, mv)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, mv)
	}
	return uint(len(m.inserted)), nil
}

func (m *mockMovementRepository) ListByComponent(ctx context.Context, componentID int, limit int) ([]domain.StockMovement, error) {
	return m.ListByComponentFunc(ctx, componentID, limit)
}

func intPtr(i int) *int {
	return &i
}

func newLedgerWithComponent(c domain.Component, movements *mockMovementRepository) (*LedgerService, *mockComponentRepository) {
	componentRepo := &mockComponentRepository{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int, companyID int) (*domain.Component, error) {
			cc := c
			return &cc, nil
		},
		UpdateQuantityFunc: func(ctx context.Context, tx *sql.Tx, id int, quantity int) error {
			return nil
		},
		UpdatePricesFunc: func(ctx context.Context, tx *sql.Tx, id int, costPrice, retailPrice *int) error {
			return nil
		},
	}
	svc := NewLedgerService(nil, componentRepo, movements, zap.NewNop(), 5*time.Second)
	return svc, componentRepo
}

func TestApplyInTx_Delivery(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	m, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:    1,
		CompanyID:      1,
		Kind:           domain.MovementDelivery,
		QuantityChange: 30,
		Description:    "weekly delivery",
	})

	assert.NoError(t, err)
	assert.Equal(t, 30, m.QuantityChange)
	assert.Equal(t, 80, m.BalanceAfter)
	assert.Len(t, movements.inserted, 1)
}

func TestApplyInTx_WriteOffWouldGoNegative(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	m, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:    1,
		CompanyID:      1,
		Kind:           domain.MovementWriteOff,
		QuantityChange: -200,
		Description:    "spoiled batch",
	})

	assert.Nil(t, m)
	_, ok := apperrors.IsInvariantError(err)
	assert.True(t, ok)
	assert.Empty(t, movements.inserted, "no ledger row may be written on a rejected movement")
}

func TestApplyInTx_WriteOffRequiresReason(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	_, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:    1,
		CompanyID:      1,
		Kind:           domain.MovementWriteOff,
		QuantityChange: -5,
	})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestApplyInTx_DeliveryRejectsNonPositive(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	_, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:    1,
		CompanyID:      1,
		Kind:           domain.MovementDelivery,
		QuantityChange: -3,
	})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestApplyInTx_SaleTaggedWithOrder(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	orderID := uint(42)
	m, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:    1,
		CompanyID:      1,
		Kind:           domain.MovementSale,
		QuantityChange: -12,
		Description:    "order fulfilled",
		OrderID:        &orderID,
	})

	assert.NoError(t, err)
	assert.Equal(t, 38, m.BalanceAfter)
	assert.Equal(t, &orderID, m.OrderID)
}

func TestApplyInTx_AdjustmentSetsAbsoluteValue(t *testing.T) {
	movements := &mockMovementRepository{}
	var updatedTo int
	svc, componentRepo := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)
	componentRepo.UpdateQuantityFunc = func(ctx context.Context, tx *sql.Tx, id int, quantity int) error {
		updatedTo = quantity
		return nil
	}

	m, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID: 1,
		CompanyID:   1,
		Kind:        domain.MovementAdjustment,
		NewQuantity: 46,
		Description: "inventory count",
	})

	assert.NoError(t, err)
	assert.Equal(t, -4, m.QuantityChange)
	assert.Equal(t, 46, m.BalanceAfter)
	assert.Equal(t, 46, updatedTo)
}

func TestApplyInTx_PriceChangeKeepsQuantity(t *testing.T) {
	movements := &mockMovementRepository{}
	quantityUpdated := false
	pricesUpdated := false
	svc, componentRepo := newLedgerWithComponent(
		domain.Component{ID: 1, Quantity: 50, CostPrice: 100, RetailPrice: 250}, movements)
	componentRepo.UpdateQuantityFunc = func(ctx context.Context, tx *sql.Tx, id int, quantity int) error {
		quantityUpdated = true
		return nil
	}
	componentRepo.UpdatePricesFunc = func(ctx context.Context, tx *sql.Tx, id int, costPrice, retailPrice *int) error {
		pricesUpdated = true
		return nil
	}

	m, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:  1,
		CompanyID:    1,
		Kind:         domain.MovementPriceChange,
		NewCostPrice: intPtr(120),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, m.QuantityChange)
	assert.Equal(t, 50, m.BalanceAfter)
	assert.Contains(t, m.Description, "cost 100 -> 120")
	assert.True(t, pricesUpdated)
	assert.False(t, quantityUpdated)
}

func TestApplyInTx_PriceChangeRequiresAPrice(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	_, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID: 1,
		CompanyID:   1,
		Kind:        domain.MovementPriceChange,
	})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestApplyInTx_UnknownKindRejected(t *testing.T) {
	movements := &mockMovementRepository{}
	svc, _ := newLedgerWithComponent(domain.Component{ID: 1, Quantity: 50}, movements)

	_, err := svc.ApplyInTx(context.Background(), nil, dto.MovementInput{
		ComponentID:    1,
		CompanyID:      1,
		Kind:           domain.MovementKind("REFUND"),
		QuantityChange: 1,
	})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, movements.inserted)
}
