package service

import (
	"context"

	"go.uber.org/zap"

	"bloomstock/internal/availability/calc"
	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
)

type ProductRepository interface {
	FindByIDsAndCompany(ctx context.Context, ids []int, companyID int) (map[int]domain.Product, error)
}

type BOMRepository interface {
	FindByProductIDs(ctx context.Context, productIDs []int) (map[int][]domain.BOMLine, error)
}

type ComponentRepository interface {
	FindByIDs(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error)
}

type ReservationRepository interface {
	SumByComponentIDs(ctx context.Context, ids []int) (map[int]int, error)
}

// AvailabilityService answers "can this be fulfilled right now" from current
// state. Strictly read-only: reservations are the lifecycle manager's job,
// which re-checks inside its own transaction anyway.
type AvailabilityService struct {
	productRepo     ProductRepository
	bomRepo         BOMRepository
	componentRepo   ComponentRepository
	reservationRepo ReservationRepository
	logger          *zap.Logger
}

func NewAvailabilityService(
	productRepo ProductRepository,
	bomRepo BOMRepository,
	componentRepo ComponentRepository,
	reservationRepo ReservationRepository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		productRepo:     productRepo,
		bomRepo:         bomRepo,
		componentRepo:   componentRepo,
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

func (s *AvailabilityService) CheckAvailability(ctx context.Context, companyID int, lines []dto.OrderLine) (*dto.AvailabilityReport, error) {
	merged, mergeWarnings := availability.MergeLines(lines)

	snap, err := s.fetchSnapshot(ctx, companyID, merged)
	if err != nil {
		return nil, err
	}

	report := availability.Compute(merged, *snap)
	report.Warnings = mergeWarnings

	s.logger.Debug("availability checked",
		zap.Int("companyId", companyID),
		zap.Int("productCount", len(merged)),
		zap.Bool("available", report.Available),
	)

	return &report, nil
}

// fetchSnapshot reads products, recipes, components and reservation sums with
// plain (unlocked) reads. Every call re-reads current state; nothing is cached
// across requests.
func (s *AvailabilityService) fetchSnapshot(ctx context.Context, companyID int, merged []dto.OrderLine) (*availability.Snapshot, error) {
	productIDs := availability.ProductIDs(merged)

	products, err := s.productRepo.FindByIDsAndCompany(ctx, productIDs, companyID)
	if err != nil {
		return nil, err
	}

	bomLines, err := s.bomRepo.FindByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	componentIDs := availability.ComponentIDs(bomLines)

	components, err := s.componentRepo.FindByIDs(ctx, componentIDs, companyID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reservationRepo.SumByComponentIDs(ctx, componentIDs)
	if err != nil {
		return nil, err
	}

	return &availability.Snapshot{
		Products:   products,
		Lines:      bomLines,
		Components: components,
		Reserved:   reserved,
	}, nil
}
