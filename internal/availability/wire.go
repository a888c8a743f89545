package availability

import (
	"database/sql"

	"go.uber.org/zap"

	"bloomstock/internal/availability/controller"
	"bloomstock/internal/availability/service"
	reciperepo "bloomstock/internal/recipe/repository"
	reservationrepo "bloomstock/internal/reservation/repository"
	stockrepo "bloomstock/internal/stock/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) (*controller.AvailabilityController, *service.AvailabilityService) {
	productRepo := reciperepo.NewMySQLProductRepository(db)
	bomRepo := reciperepo.NewMySQLBOMRepository(db)
	componentRepo := stockrepo.NewMySQLComponentRepository(db)
	reservationRepo := reservationrepo.NewMySQLReservationRepository(db)

	svc := service.NewAvailabilityService(productRepo, bomRepo, componentRepo, reservationRepo, logger)
	ctrl := controller.NewAvailabilityController(svc, logger)

	return ctrl, svc
}
