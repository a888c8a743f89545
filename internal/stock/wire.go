package stock

import (
	"database/sql"

	"go.uber.org/zap"

	"bloomstock/internal/config"
	"bloomstock/internal/stock/controller"
	"bloomstock/internal/stock/repository"
	"bloomstock/internal/stock/service"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*controller.StockController, *service.LedgerService) {
	componentRepo := repository.NewMySQLComponentRepository(db)
	movementRepo := repository.NewMySQLMovementRepository(db)

	ledgerSvc := service.NewLedgerService(db, componentRepo, movementRepo, logger, cfg.Reservation.TxTimeout)
	ctrl := controller.NewStockController(ledgerSvc, logger)

	return ctrl, ledgerSvc
}
