package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type StockReserver interface {
	ReserveForOrder(ctx context.Context, orderID uint, companyID int, lines []dto.OrderLine) (*dto.ReserveResult, error)
	ReleaseReservations(ctx context.Context, orderID uint) (*dto.ReleaseResult, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

type ReserveUseCase struct {
	orderRepo        OrderRepository
	reservationSvc   StockReserver
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewReserveUseCase(
	orderRepo OrderRepository,
	reservationSvc StockReserver,
	logger *zap.Logger,
	maxRetryAttempts int,
) *ReserveUseCase {
	return &ReserveUseCase{
		orderRepo:        orderRepo,
		reservationSvc:   reservationSvc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *ReserveUseCase) ReserveForOrder(ctx context.Context, orderID uint, companyID int, lines []dto.OrderLine) (*dto.ReserveResult, error) {
	uc.logger.Info("reserve started",
		zap.Uint("orderId", orderID), zap.Int("companyId", companyID), zap.Int("lineCount", len(lines)))

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, err
	}

	if order.CompanyID != companyID {
		// Orders of other tenants look nonexistent.
		return nil, apperrors.NewNotFoundError("order not found")
	}

	if order.Status != domain.OrderStatusPending {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("order is in status %s, expected %s", order.Status, domain.OrderStatusPending))
	}

	return uc.reserveWithRetry(ctx, orderID, companyID, lines)
}

func (uc *ReserveUseCase) ReleaseReservations(ctx context.Context, orderID uint) (*dto.ReleaseResult, error) {
	return uc.reservationSvc.ReleaseReservations(ctx, orderID)
}

func (uc *ReserveUseCase) reserveWithRetry(ctx context.Context, orderID uint, companyID int, lines []dto.OrderLine) (*dto.ReserveResult, error) {
	maxAttempts := uc.maxRetryAttempts
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := uc.reservationSvc.ReserveForOrder(ctx, orderID, companyID, lines)
		if err == nil {
			return result, nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				base := backoffs[(attempt-1)%len(backoffs)]
				jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
				time.Sleep(jitter)
				uc.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Uint("orderId", orderID))
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
