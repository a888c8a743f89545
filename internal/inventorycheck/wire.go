package inventorycheck

import (
	"database/sql"

	"go.uber.org/zap"

	"bloomstock/internal/config"
	"bloomstock/internal/inventorycheck/controller"
	"bloomstock/internal/inventorycheck/repository"
	"bloomstock/internal/inventorycheck/service"
	stockrepo "bloomstock/internal/stock/repository"
	stockservice "bloomstock/internal/stock/service"
)

func NewModule(db *sql.DB, cfg *config.Config, ledger *stockservice.LedgerService, logger *zap.Logger) *controller.CheckController {
	checkRepo := repository.NewMySQLCheckRepository(db)
	componentRepo := stockrepo.NewMySQLComponentRepository(db)

	svc := service.NewCheckService(db, checkRepo, componentRepo, ledger, logger, cfg.Reservation.TxTimeout)

	return controller.NewCheckController(svc, logger)
}
