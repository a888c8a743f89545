package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"bloomstock/internal/availability/calc"
	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByIDsAndCompany(ctx context.Context, ids []int, companyID int) (map[int]domain.Product, error)
}

type BOMRepository interface {
	FindByProductIDs(ctx context.Context, productIDs []int) (map[int][]domain.BOMLine, error)
}

type ComponentRepository interface {
	FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int, companyID int) (map[int]domain.Component, error)
}

type ReservationRepository interface {
	InsertBatch(ctx context.Context, tx *sql.Tx, reservations []domain.Reservation) error
	SumByComponentIDsTx(ctx context.Context, tx *sql.Tx, ids []int) (map[int]int, error)
	DeleteByOrderID(ctx context.Context, orderID uint) (int64, error)
}

// ReservationService is the only path that writes reservation rows. The
// availability re-check and the inserts share one transaction, with every
// referenced component row locked in ascending id order, so two concurrent
// reserves on the same components serialize instead of both reading the same
// effective availability.
type ReservationService struct {
	db              TransactionManager
	productRepo     ProductRepository
	bomRepo         BOMRepository
	componentRepo   ComponentRepository
	reservationRepo ReservationRepository
	logger          *zap.Logger
	txTimeout       time.Duration
}

func NewReservationService(
	db TransactionManager,
	productRepo ProductRepository,
	bomRepo BOMRepository,
	componentRepo ComponentRepository,
	reservationRepo ReservationRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ReservationService {
	return &ReservationService{
		db:              db,
		productRepo:     productRepo,
		bomRepo:         bomRepo,
		componentRepo:   componentRepo,
		reservationRepo: reservationRepo,
		logger:          logger,
		txTimeout:       txTimeout,
	}
}

// ReserveForOrder re-checks availability and, only when the whole order is
// satisfiable, writes all reservation rows. A failed check leaves zero rows:
// partial reservation of an order does not exist.
func (s *ReservationService) ReserveForOrder(ctx context.Context, orderID uint, companyID int, lines []dto.OrderLine) (*dto.ReserveResult, error) {
	merged, mergeWarnings := availability.MergeLines(lines)

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback()

	productIDs := availability.ProductIDs(merged)

	products, err := s.productRepo.FindByIDsAndCompany(txCtx, productIDs, companyID)
	if err != nil {
		return nil, err
	}

	bomLines, err := s.bomRepo.FindByProductIDs(txCtx, productIDs)
	if err != nil {
		return nil, err
	}

	componentIDs := availability.ComponentIDs(bomLines)

	// Locks every referenced component until commit; ids ascend to keep the
	// acquisition order deadlock-free across concurrent orders.
	components, err := s.componentRepo.FindByIDsForUpdate(txCtx, tx, componentIDs, companyID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reservationRepo.SumByComponentIDsTx(txCtx, tx, componentIDs)
	if err != nil {
		return nil, err
	}

	snap := availability.Snapshot{
		Products:   products,
		Lines:      bomLines,
		Components: components,
		Reserved:   reserved,
	}

	report := availability.Compute(merged, snap)
	report.Warnings = mergeWarnings

	if !report.Available {
		s.logger.Warn("reservation rejected by availability check",
			zap.Uint("orderId", orderID), zap.Int("productCount", len(merged)))
		return &dto.ReserveResult{Reserved: false, OrderID: orderID, Report: &report}, nil
	}

	plans, ok, planWarnings := availability.PlanReservations(merged, snap)
	if !ok {
		// Products individually fit but jointly over-commit a shared component.
		report.Available = false
		report.Warnings = append(report.Warnings, planWarnings...)
		s.logger.Warn("reservation rejected by cumulative allocation",
			zap.Uint("orderId", orderID), zap.Strings("warnings", planWarnings))
		return &dto.ReserveResult{Reserved: false, OrderID: orderID, Report: &report}, nil
	}

	rows := make([]domain.Reservation, 0, len(plans))
	reservedRows := make([]dto.ReservedRow, 0, len(plans))
	for _, plan := range plans {
		rows = append(rows, domain.Reservation{
			OrderID:          orderID,
			ComponentID:      plan.ComponentID,
			ReservedQuantity: plan.Quantity,
		})
		reservedRows = append(reservedRows, dto.ReservedRow{
			ComponentID:      plan.ComponentID,
			ReservedQuantity: plan.Quantity,
		})
	}

	if err := s.reservationRepo.InsertBatch(txCtx, tx, rows); err != nil {
		s.logger.Error("failed to insert reservations", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit reservation", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("reservations committed",
		zap.Uint("orderId", orderID),
		zap.Int("rowCount", len(rows)),
	)

	return &dto.ReserveResult{
		Reserved:     true,
		OrderID:      orderID,
		Report:       &report,
		ReservedRows: reservedRows,
	}, nil
}

// ReleaseReservations drops every hold for an order: on cancellation, after
// the hold is superseded by a physical sale deduction, or from the janitor.
// Releasing an order with no rows is a no-op.
func (s *ReservationService) ReleaseReservations(ctx context.Context, orderID uint) (*dto.ReleaseResult, error) {
	rowsReleased, err := s.reservationRepo.DeleteByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to release reservations", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	if rowsReleased > 0 {
		s.logger.Info("reservations released", zap.Uint("orderId", orderID), zap.Int64("rows", rowsReleased))
	}

	return &dto.ReleaseResult{OrderID: orderID, RowsReleased: rowsReleased}, nil
}
