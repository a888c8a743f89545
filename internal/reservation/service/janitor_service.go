package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
)

type OrderRepository interface {
	FindStaleWithReservations(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error)
}

type ReservationReader interface {
	ListByOrderID(ctx context.Context, orderID uint) ([]domain.Reservation, error)
	ListAll(ctx context.Context) ([]domain.Reservation, error)
}

type ReservationReleaser interface {
	ReleaseReservations(ctx context.Context, orderID uint) (*dto.ReleaseResult, error)
}

// JanitorService releases reservations held by abandoned orders. Without it
// effective availability shrinks monotonically as unpaid orders pile up, even
// though the physical stock sits unused.
type JanitorService struct {
	orderRepo       OrderRepository
	reservationRepo ReservationReader
	releaser        ReservationReleaser
	logger          *zap.Logger
}

func NewJanitorService(
	orderRepo OrderRepository,
	reservationRepo ReservationReader,
	releaser ReservationReleaser,
	logger *zap.Logger,
) *JanitorService {
	return &JanitorService{
		orderRepo:       orderRepo,
		reservationRepo: reservationRepo,
		releaser:        releaser,
		logger:          logger,
	}
}

// SweepExpiredReservations releases holds of orders older than maxAgeHours in
// an abandoned-candidate status. Per-order failures are logged and skipped so
// one bad row cannot halt the sweep. In dry-run mode nothing is deleted.
func (s *JanitorService) SweepExpiredReservations(ctx context.Context, maxAgeHours int, dryRun bool) (*dto.SweepReport, error) {
	now := time.Now()
	cutoff := now.Add(-time.Duration(maxAgeHours) * time.Hour)

	orders, err := s.orderRepo.FindStaleWithReservations(ctx, cutoff, domain.AbandonedCandidateStatuses)
	if err != nil {
		return nil, err
	}

	report := &dto.SweepReport{
		MaxAgeHours: maxAgeHours,
		DryRun:      dryRun,
	}

	for _, order := range orders {
		entry := dto.SweepEntry{
			OrderID:     order.ID,
			OrderStatus: order.Status,
			AgeHours:    now.Sub(order.CreatedAt).Hours(),
		}

		reservations, err := s.reservationRepo.ListByOrderID(ctx, order.ID)
		if err != nil {
			entry.Error = err.Error()
			report.Failures++
			report.Entries = append(report.Entries, entry)
			s.logger.Error("sweep: listing reservations failed",
				zap.Uint("orderId", order.ID), zap.Error(err))
			continue
		}

		entry.ReservationRows = len(reservations)
		for _, res := range reservations {
			entry.ReservedQuantity += res.ReservedQuantity
		}

		if !dryRun {
			released, err := s.releaser.ReleaseReservations(ctx, order.ID)
			if err != nil {
				entry.Error = err.Error()
				report.Failures++
				report.Entries = append(report.Entries, entry)
				s.logger.Error("sweep: release failed",
					zap.Uint("orderId", order.ID), zap.Error(err))
				continue
			}
			entry.Released = true
			report.OrdersReleased++
			report.RowsReleased += released.RowsReleased
		}

		report.Entries = append(report.Entries, entry)
	}
	report.OrdersExamined = len(orders)

	s.logger.Info("reservation sweep finished",
		zap.Int("maxAgeHours", maxAgeHours),
		zap.Bool("dryRun", dryRun),
		zap.Int("ordersExamined", report.OrdersExamined),
		zap.Int("ordersReleased", report.OrdersReleased),
		zap.Int64("rowsReleased", report.RowsReleased),
		zap.Int("failures", report.Failures),
	)

	return report, nil
}

var statsBuckets = []struct {
	label string
	below time.Duration
}{
	{"<24h", 24 * time.Hour},
	{"24-48h", 48 * time.Hour},
	{"48-72h", 72 * time.Hour},
	{">72h", 1<<62 - 1},
}

// Stats returns an age-bucketed histogram of everything currently held, for
// operators eyeballing whether the sweep cadence keeps up.
func (s *JanitorService) Stats(ctx context.Context) (*dto.ReservationStats, error) {
	reservations, err := s.reservationRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stats := &dto.ReservationStats{}
	for _, b := range statsBuckets {
		stats.Buckets = append(stats.Buckets, dto.AgeBucket{Label: b.label})
	}

	for _, res := range reservations {
		age := now.Sub(res.CreatedAt)
		for i, b := range statsBuckets {
			if age < b.below {
				stats.Buckets[i].Count++
				stats.Buckets[i].Quantity += res.ReservedQuantity
				break
			}
		}
		stats.TotalRows++
		stats.TotalQuantity += res.ReservedQuantity
	}

	return stats, nil
}
