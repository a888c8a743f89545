package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
)

type mockOrderRepository struct {
	FindStaleWithReservationsFunc func(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error)
}

func (m *mockOrderRepository) FindStaleWithReservations(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error) {
	return m.FindStaleWithReservationsFunc(ctx, cutoff, statuses)
}

type mockReservationReader struct {
	ListByOrderIDFunc func(ctx context.Context, orderID uint) ([]domain.Reservation, error)
	ListAllFunc       func(ctx context.Context) ([]domain.Reservation, error)
}

func (m *mockReservationReader) ListByOrderID(ctx context.Context, orderID uint) ([]domain.Reservation, error) {
	return m.ListByOrderIDFunc(ctx, orderID)
}

func (m *mockReservationReader) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	return m.ListAllFunc(ctx)
}

type mockReleaser struct {
	ReleaseReservationsFunc func(ctx context.Context, orderID uint) (*dto.ReleaseResult, error)
	released                []uint
}

func (m *mockReleaser) ReleaseReservations(ctx context.Context, orderID uint) (*dto.ReleaseResult, error) {
	m.released = append(m.released, orderID)
	if m.ReleaseReservationsFunc != nil {
		return m.ReleaseReservationsFunc(ctx, orderID)
	}
	return &dto.ReleaseResult{OrderID: orderID, RowsReleased: 2}, nil
}

func staleOrders(ids ...uint) []domain.Order {
	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, domain.Order{
			ID:        id,
			Status:    domain.OrderStatusPending,
			CreatedAt: time.Now().Add(-100 * time.Hour),
		})
	}
	return orders
}

func TestSweep_ReleasesStaleOrders(t *testing.T) {
	var gotCutoff time.Time
	var gotStatuses []string
	orderRepo := &mockOrderRepository{
		FindStaleWithReservationsFunc: func(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error) {
			gotCutoff = cutoff
			gotStatuses = statuses
			return staleOrders(1, 2), nil
		},
	}
	reader := &mockReservationReader{
		ListByOrderIDFunc: func(ctx context.Context, orderID uint) ([]domain.Reservation, error) {
			return []domain.Reservation{
				{OrderID: orderID, ComponentID: 1, ReservedQuantity: 12},
				{OrderID: orderID, ComponentID: 2, ReservedQuantity: 1},
			}, nil
		},
	}
	releaser := &mockReleaser{}

	svc := NewJanitorService(orderRepo, reader, releaser, zap.NewNop())
	report, err := svc.SweepExpiredReservations(context.Background(), 72, false)

	assert.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, releaser.released)
	assert.Equal(t, 2, report.OrdersExamined)
	assert.Equal(t, 2, report.OrdersReleased)
	assert.Equal(t, int64(4), report.RowsReleased)
	assert.Equal(t, 0, report.Failures)
	assert.Equal(t, 13, report.Entries[0].ReservedQuantity)

	assert.WithinDuration(t, time.Now().Add(-72*time.Hour), gotCutoff, time.Minute)
	assert.Equal(t, domain.AbandonedCandidateStatuses, gotStatuses)
}

func TestSweep_DryRunReleasesNothing(t *testing.T) {
	orderRepo := &mockOrderRepository{
		FindStaleWithReservationsFunc: func(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error) {
			return staleOrders(7), nil
		},
	}
	reader := &mockReservationReader{
		ListByOrderIDFunc: func(ctx context.Context, orderID uint) ([]domain.Reservation, error) {
			return []domain.Reservation{{OrderID: orderID, ComponentID: 1, ReservedQuantity: 5}}, nil
		},
	}
	releaser := &mockReleaser{}

	svc := NewJanitorService(orderRepo, reader, releaser, zap.NewNop())
	report, err := svc.SweepExpiredReservations(context.Background(), 72, true)

	assert.NoError(t, err)
	assert.Empty(t, releaser.released)
	assert.Equal(t, 1, report.OrdersExamined)
	assert.Equal(t, 0, report.OrdersReleased)
	assert.False(t, report.Entries[0].Released)
	assert.Equal(t, 1, report.Entries[0].ReservationRows)
}

func TestSweep_PerOrderFailureDoesNotHaltSweep(t *testing.T) {
	orderRepo := &mockOrderRepository{
		FindStaleWithReservationsFunc: func(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error) {
			return staleOrders(1, 2, 3), nil
		},
	}
	reader := &mockReservationReader{
		ListByOrderIDFunc: func(ctx context.Context, orderID uint) ([]domain.Reservation, error) {
			return []domain.Reservation{{OrderID: orderID, ComponentID: 1, ReservedQuantity: 1}}, nil
		},
	}
	releaser := &mockReleaser{
		ReleaseReservationsFunc: func(ctx context.Context, orderID uint) (*dto.ReleaseResult, error) {
			if orderID == 2 {
				return nil, errors.New("lock wait timeout")
			}
			return &dto.ReleaseResult{OrderID: orderID, RowsReleased: 1}, nil
		},
	}

	svc := NewJanitorService(orderRepo, reader, releaser, zap.NewNop())
	report, err := svc.SweepExpiredReservations(context.Background(), 72, false)

	assert.NoError(t, err)
	assert.Equal(t, 3, report.OrdersExamined)
	assert.Equal(t, 2, report.OrdersReleased)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, []uint{1, 2, 3}, releaser.released)
}

func TestStats_BucketsByAge(t *testing.T) {
	now := time.Now()
	reader := &mockReservationReader{
		ListAllFunc: func(ctx context.Context) ([]domain.Reservation, error) {
			return []domain.Reservation{
				{ID: 1, ReservedQuantity: 10, CreatedAt: now.Add(-1 * time.Hour)},
				{ID: 2, ReservedQuantity: 5, CreatedAt: now.Add(-30 * time.Hour)},
				{ID: 3, ReservedQuantity: 3, CreatedAt: now.Add(-60 * time.Hour)},
				{ID: 4, ReservedQuantity: 2, CreatedAt: now.Add(-200 * time.Hour)},
			}, nil
		},
	}

	svc := NewJanitorService(nil, reader, nil, zap.NewNop())
	stats, err := svc.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 20, stats.TotalQuantity)
	assert.Equal(t, "<24h", stats.Buckets[0].Label)
	assert.Equal(t, 1, stats.Buckets[0].Count)
	assert.Equal(t, 1, stats.Buckets[1].Count)
	assert.Equal(t, 1, stats.Buckets[2].Count)
	assert.Equal(t, 1, stats.Buckets[3].Count)
	assert.Equal(t, 2, stats.Buckets[3].Quantity)
}
