package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type CheckRepository interface {
	InsertSession(ctx context.Context, tx *sql.Tx, session domain.InventoryCheckSession) (uint, error)
	FindByID(ctx context.Context, id uint, companyID int) (*domain.InventoryCheckSession, error)
	MarkApplied(ctx context.Context, tx *sql.Tx, id uint, appliedAt time.Time) (bool, error)
}

type ComponentFinder interface {
	FindByIDs(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error)
}

type Ledger interface {
	ApplyInTx(ctx context.Context, tx *sql.Tx, input dto.MovementInput) (*domain.StockMovement, error)
}

// CheckService records physical inventory counts and turns approved counts
// into stock ledger adjustments.
type CheckService struct {
	db            TransactionManager
	checkRepo     CheckRepository
	componentRepo ComponentFinder
	ledger        Ledger
	logger        *zap.Logger
	txTimeout     time.Duration
}

func NewCheckService(
	db TransactionManager,
	checkRepo CheckRepository,
	componentRepo ComponentFinder,
	ledger Ledger,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CheckService {
	return &CheckService{
		db:            db,
		checkRepo:     checkRepo,
		componentRepo: componentRepo,
		ledger:        ledger,
		logger:        logger,
		txTimeout:     txTimeout,
	}
}

// CreateCheckSession snapshots the current quantity of every counted
// component and stores the per-line difference. Nothing moves until apply.
func (s *CheckService) CreateCheckSession(ctx context.Context, companyID int, auditor, comment string, lines []dto.CheckLineInput) (*domain.InventoryCheckSession, error) {
	componentIDs := make([]int, 0, len(lines))
	for _, l := range lines {
		componentIDs = append(componentIDs, l.ComponentID)
	}

	components, err := s.componentRepo.FindByIDs(ctx, componentIDs, companyID)
	if err != nil {
		return nil, err
	}

	session := domain.InventoryCheckSession{
		CompanyID: companyID,
		Auditor:   auditor,
		Comment:   comment,
		Status:    domain.CheckStatusPending,
	}

	for _, l := range lines {
		component, ok := components[l.ComponentID]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("component with id %d not found", l.ComponentID))
		}
		session.Lines = append(session.Lines, domain.InventoryCheckLine{
			ComponentID:     l.ComponentID,
			CurrentQuantity: component.Quantity,
			ActualQuantity:  l.ActualQuantity,
			Difference:      l.ActualQuantity - component.Quantity,
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sessionID, err := s.checkRepo.InsertSession(txCtx, tx, session)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	session.ID = sessionID
	s.logger.Info("inventory check session created",
		zap.Uint("sessionId", sessionID),
		zap.Int("companyId", companyID),
		zap.String("auditor", auditor),
		zap.Int("lineCount", len(session.Lines)),
	)

	return &session, nil
}

func (s *CheckService) GetSession(ctx context.Context, sessionID uint, companyID int) (*domain.InventoryCheckSession, error) {
	return s.checkRepo.FindByID(ctx, sessionID, companyID)
}

// ApplySession converts every non-zero-difference line into one inventory
// adjustment, all in one transaction. A session applies at most once; the
// second attempt is rejected with no movements written.
func (s *CheckService) ApplySession(ctx context.Context, sessionID uint, companyID int) (*dto.ApplySessionResult, error) {
	session, err := s.checkRepo.FindByID(ctx, sessionID, companyID)
	if err != nil {
		return nil, err
	}

	if session.Status == domain.CheckStatusApplied {
		return nil, apperrors.NewConflictError(fmt.Sprintf("inventory check session %d already applied", sessionID))
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The guarded update also serializes concurrent applies of one session.
	marked, err := s.checkRepo.MarkApplied(txCtx, tx, sessionID, time.Now())
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, apperrors.NewConflictError(fmt.Sprintf("inventory check session %d already applied", sessionID))
	}

	applied := 0
	for _, line := range session.Lines {
		if line.Difference == 0 {
			continue
		}

		_, err := s.ledger.ApplyInTx(txCtx, tx, dto.MovementInput{
			ComponentID: line.ComponentID,
			CompanyID:   companyID,
			Kind:        domain.MovementAdjustment,
			NewQuantity: line.ActualQuantity,
			Description: adjustmentDescription(session, line),
		})
		if err != nil {
			return nil, err
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("inventory check session applied",
		zap.Uint("sessionId", sessionID),
		zap.Int("movementsApplied", applied),
	)

	return &dto.ApplySessionResult{SessionID: sessionID, MovementsApplied: applied}, nil
}

func adjustmentDescription(session *domain.InventoryCheckSession, line domain.InventoryCheckLine) string {
	sign := "surplus"
	if line.Difference < 0 {
		sign = "shortage"
	}
	desc := fmt.Sprintf("inventory count by %s: %d -> %d (%s %d)",
		session.Auditor, line.CurrentQuantity, line.ActualQuantity, sign, abs(line.Difference))
	if session.Comment != "" {
		desc += ": " + session.Comment
	}
	return desc
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
