package reservation

import (
	"database/sql"

	"go.uber.org/zap"

	"bloomstock/internal/config"
	reciperepo "bloomstock/internal/recipe/repository"
	"bloomstock/internal/reservation/controller"
	"bloomstock/internal/reservation/repository"
	"bloomstock/internal/reservation/service"
	"bloomstock/internal/reservation/usecase"
	stockrepo "bloomstock/internal/stock/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*controller.ReservationController, *service.JanitorService) {
	orderRepo := repository.NewMySQLOrderRepository(db)
	reservationRepo := repository.NewMySQLReservationRepository(db)
	productRepo := reciperepo.NewMySQLProductRepository(db)
	bomRepo := reciperepo.NewMySQLBOMRepository(db)
	componentRepo := stockrepo.NewMySQLComponentRepository(db)

	reservationSvc := service.NewReservationService(
		db,
		productRepo,
		bomRepo,
		componentRepo,
		reservationRepo,
		logger,
		cfg.Reservation.TxTimeout,
	)

	janitorSvc := service.NewJanitorService(orderRepo, reservationRepo, reservationSvc, logger)

	uc := usecase.NewReserveUseCase(
		orderRepo,
		reservationSvc,
		logger,
		cfg.Reservation.MaxRetryAttempts,
	)

	ctrl := controller.NewReservationController(uc, janitorSvc, logger)

	return ctrl, janitorSvc
}
