package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ComponentRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int, companyID int) (*domain.Component, error)
	UpdateQuantity(ctx context.Context, tx *sql.Tx, id int, quantity int) error
	UpdatePrices(ctx context.Context, tx *sql.Tx, id int, costPrice, retailPrice *int) error
	FindLowStock(ctx context.Context, companyID int) ([]domain.Component, error)
}

type MovementRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (uint, error)
	ListByComponent(ctx context.Context, componentID int, limit int) ([]domain.StockMovement, error)
}

// LedgerService owns all physical stock mutation. Every change appends one
// immutable StockMovement row and updates the component quantity in the same
// transaction, with the component row locked for the duration.
type LedgerService struct {
	db            TransactionManager
	componentRepo ComponentRepository
	movementRepo  MovementRepository
	logger        *zap.Logger
	txTimeout     time.Duration
}

func NewLedgerService(
	db TransactionManager,
	componentRepo ComponentRepository,
	movementRepo MovementRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *LedgerService {
	return &LedgerService{
		db:            db,
		componentRepo: componentRepo,
		movementRepo:  movementRepo,
		logger:        logger,
		txTimeout:     txTimeout,
	}
}

func (s *LedgerService) ApplyMovement(ctx context.Context, input dto.MovementInput) (*domain.StockMovement, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	movement, err := s.ApplyInTx(txCtx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit movement", zap.Int("componentId", input.ComponentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("stock movement applied",
		zap.Int("componentId", input.ComponentID),
		zap.String("kind", string(input.Kind)),
		zap.Int("quantityChange", movement.QuantityChange),
		zap.Int("balanceAfter", movement.BalanceAfter),
	)

	return movement, nil
}

// ApplyInTx runs the movement inside a caller-owned transaction. Inventory
// reconciliation uses this to apply a whole count session as one unit of work.
func (s *LedgerService) ApplyInTx(ctx context.Context, tx *sql.Tx, input dto.MovementInput) (*domain.StockMovement, error) {
	if !input.Kind.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown movement kind %q", input.Kind))
	}

	component, err := s.componentRepo.FindByIDForUpdate(ctx, tx, input.ComponentID, input.CompanyID)
	if err != nil {
		return nil, err
	}

	delta, description, err := resolveMovement(component, input)
	if err != nil {
		return nil, err
	}

	if !component.CanApplyDelta(delta) {
		return nil, apperrors.NewInvariantError(fmt.Sprintf(
			"movement of %d would drive component %d negative (current %d)",
			delta, component.ID, component.Quantity))
	}

	balanceAfter := component.Quantity + delta

	movement := domain.StockMovement{
		ComponentID:    component.ID,
		Kind:           input.Kind,
		QuantityChange: delta,
		BalanceAfter:   balanceAfter,
		Description:    description,
		OrderID:        input.OrderID,
	}

	id, err := s.movementRepo.Insert(ctx, tx, movement)
	if err != nil {
		return nil, err
	}
	movement.ID = id

	if input.Kind == domain.MovementPriceChange {
		if err := s.componentRepo.UpdatePrices(ctx, tx, component.ID, input.NewCostPrice, input.NewRetailPrice); err != nil {
			return nil, err
		}
	} else {
		if err := s.componentRepo.UpdateQuantity(ctx, tx, component.ID, balanceAfter); err != nil {
			return nil, err
		}
	}

	return &movement, nil
}

// resolveMovement normalizes a movement input into a signed delta and the
// ledger description, enforcing the per-kind rules.
func resolveMovement(component *domain.Component, input dto.MovementInput) (int, string, error) {
	switch input.Kind {
	case domain.MovementDelivery:
		if input.QuantityChange <= 0 {
			return 0, "", apperrors.NewValidationError("delivery requires a positive quantity change")
		}
		return input.QuantityChange, input.Description, nil

	case domain.MovementSale:
		if input.QuantityChange >= 0 {
			return 0, "", apperrors.NewValidationError("sale requires a negative quantity change")
		}
		return input.QuantityChange, input.Description, nil

	case domain.MovementWriteOff:
		if input.QuantityChange >= 0 {
			return 0, "", apperrors.NewValidationError("write-off requires a negative quantity change")
		}
		if strings.TrimSpace(input.Description) == "" {
			return 0, "", apperrors.NewValidationError("write-off requires a reason")
		}
		return input.QuantityChange, input.Description, nil

	case domain.MovementPriceChange:
		if input.QuantityChange != 0 {
			return 0, "", apperrors.NewValidationError("price change must not move quantity")
		}
		if input.NewCostPrice == nil && input.NewRetailPrice == nil {
			return 0, "", apperrors.NewValidationError("price change requires a new cost or retail price")
		}
		return 0, priceChangeDescription(component, input), nil

	case domain.MovementAdjustment:
		if input.NewQuantity < 0 {
			return 0, "", apperrors.NewValidationError("inventory adjustment cannot set a negative quantity")
		}
		// Adjustment carries an absolute target; the delta falls out of the
		// current balance read under lock.
		return input.NewQuantity - component.Quantity, input.Description, nil
	}

	return 0, "", apperrors.NewValidationError(fmt.Sprintf("unknown movement kind %q", input.Kind))
}

func priceChangeDescription(component *domain.Component, input dto.MovementInput) string {
	parts := []string{}
	if input.NewCostPrice != nil {
		parts = append(parts, fmt.Sprintf("cost %d -> %d", component.CostPrice, *input.NewCostPrice))
	}
	if input.NewRetailPrice != nil {
		parts = append(parts, fmt.Sprintf("retail %d -> %d", component.RetailPrice, *input.NewRetailPrice))
	}
	desc := "price change: " + strings.Join(parts, ", ")
	if input.Description != "" {
		desc += " (" + input.Description + ")"
	}
	return desc
}

func (s *LedgerService) ListMovements(ctx context.Context, componentID int, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.movementRepo.ListByComponent(ctx, componentID, limit)
}

func (s *LedgerService) ListLowStock(ctx context.Context, companyID int) ([]domain.Component, error) {
	return s.componentRepo.FindLowStock(ctx, companyID)
}
