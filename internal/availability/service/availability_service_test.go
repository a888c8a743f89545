package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
)

type mockProductRepository struct {
	FindByIDsAndCompanyFunc func(ctx context.Context, ids []int, companyID int) (map[int]domain.Product, error)
}

func (m *mockProductRepository) FindByIDsAndCompany(ctx context.Context, ids []int, companyID int) (map[int]domain.Product, error) {
	return m.FindByIDsAndCompanyFunc(ctx, ids, companyID)
}

type mockBOMRepository struct {
	FindByProductIDsFunc func(ctx context.Context, productIDs []int) (map[int][]domain.BOMLine, error)
}

func (m *mockBOMRepository) FindByProductIDs(ctx context.Context, productIDs []int) (map[int][]domain.BOMLine, error) {
	return m.FindByProductIDsFunc(ctx, productIDs)
}

type mockComponentRepository struct {
	FindByIDsFunc func(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error)
}

func (m *mockComponentRepository) FindByIDs(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error) {
	return m.FindByIDsFunc(ctx, ids, companyID)
}

type mockReservationRepository struct {
	SumByComponentIDsFunc func(ctx context.Context, ids []int) (map[int]int, error)
}

func (m *mockReservationRepository) SumByComponentIDs(ctx context.Context, ids []int) (map[int]int, error) {
	return m.SumByComponentIDsFunc(ctx, ids)
}

func newTestService(reservedRoses int) *AvailabilityService {
	productRepo := &mockProductRepository{
		FindByIDsAndCompanyFunc: func(ctx context.Context, ids []int, companyID int) (map[int]domain.Product, error) {
			return map[int]domain.Product{
				10: {ID: 10, CompanyID: companyID, Name: "Dozen Roses", IsActive: true},
			}, nil
		},
	}
	bomRepo := &mockBOMRepository{
		FindByProductIDsFunc: func(ctx context.Context, productIDs []int) (map[int][]domain.BOMLine, error) {
			return map[int][]domain.BOMLine{
				10: {{ID: 1, ProductID: 10, ComponentID: 1, QuantityPerUnit: 12}},
			}, nil
		},
	}
	componentRepo := &mockComponentRepository{
		FindByIDsFunc: func(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error) {
			return map[int]domain.Component{
				1: {ID: 1, CompanyID: companyID, Name: "Red Rose", Quantity: 50},
			}, nil
		},
	}
	reservationRepo := &mockReservationRepository{
		SumByComponentIDsFunc: func(ctx context.Context, ids []int) (map[int]int, error) {
			return map[int]int{1: reservedRoses}, nil
		},
	}

	return NewAvailabilityService(productRepo, bomRepo, componentRepo, reservationRepo, zap.NewNop())
}

func TestCheckAvailability_Available(t *testing.T) {
	svc := newTestService(0)

	report, err := svc.CheckAvailability(context.Background(), 1, []dto.OrderLine{
		{ProductID: 10, Quantity: 4},
	})

	assert.NoError(t, err)
	assert.True(t, report.Available)
	assert.Equal(t, 4, report.Products[0].MaxQuantity)
}

func TestCheckAvailability_ReservationsAreSubtracted(t *testing.T) {
	svc := newTestService(48)

	report, err := svc.CheckAvailability(context.Background(), 1, []dto.OrderLine{
		{ProductID: 10, Quantity: 1},
	})

	assert.NoError(t, err)
	assert.False(t, report.Available)
	assert.Equal(t, 0, report.Products[0].MaxQuantity)
	assert.Contains(t, report.Products[0].Warnings, "out of stock")
}

func TestCheckAvailability_DuplicateLinesMergedWithWarning(t *testing.T) {
	svc := newTestService(0)

	report, err := svc.CheckAvailability(context.Background(), 1, []dto.OrderLine{
		{ProductID: 10, Quantity: 2},
		{ProductID: 10, Quantity: 2},
	})

	assert.NoError(t, err)
	assert.True(t, report.Available)
	assert.Len(t, report.Products, 1)
	assert.Equal(t, 4, report.Products[0].Requested)
	assert.Len(t, report.Warnings, 1)
}

func TestCheckAvailability_RepositoryErrorPropagates(t *testing.T) {
	svc := newTestService(0)
	svc.componentRepo = &mockComponentRepository{
		FindByIDsFunc: func(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error) {
			return nil, errors.New("connection lost")
		},
	}

	report, err := svc.CheckAvailability(context.Background(), 1, []dto.OrderLine{
		{ProductID: 10, Quantity: 1},
	})

	assert.Error(t, err)
	assert.Nil(t, report)
}
