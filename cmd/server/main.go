package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloomstock/internal/availability"
	"bloomstock/internal/commons"
	"bloomstock/internal/config"
	"bloomstock/internal/infrastructure/logger"
	"bloomstock/internal/infrastructure/mysql"
	"bloomstock/internal/inventorycheck"
	"bloomstock/internal/reservation"
	reservationservice "bloomstock/internal/reservation/service"
	"bloomstock/internal/server"
	"bloomstock/internal/stock"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	stockCtrl, ledger := stock.NewModule(db, cfg, zapLogger)
	availabilityCtrl, _ := availability.NewModule(db, zapLogger)
	reservationCtrl, janitor := reservation.NewModule(db, cfg, zapLogger)
	checkCtrl := inventorycheck.NewModule(db, cfg, ledger, zapLogger)

	router := server.NewRouter(db, availabilityCtrl, reservationCtrl, stockCtrl, checkCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go runSweeper(sweepCtx, janitor, cfg.Reservation, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

// loadConfig prefers a yaml file when CONFIG_PATH is set, otherwise reads
// everything from environment variables.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

// runSweeper periodically releases reservations held by abandoned orders.
func runSweeper(ctx context.Context, janitor *reservationservice.JanitorService, cfg config.ReservationConfig, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	logger.Info("reservation sweeper started",
		zap.Duration("interval", cfg.SweepInterval),
		zap.Int("maxAgeHours", cfg.MaxAgeHours))

	for {
		select {
		case <-ctx.Done():
			logger.Info("reservation sweeper stopped")
			return
		case <-ticker.C:
			report, err := janitor.SweepExpiredReservations(ctx, cfg.MaxAgeHours, false)
			if err != nil {
				logger.Error("reservation sweep failed", zap.Error(err))
				continue
			}
			if report.OrdersReleased > 0 || report.Failures > 0 {
				logger.Info("reservation sweep completed",
					zap.Int("ordersReleased", report.OrdersReleased),
					zap.Int64("rowsReleased", report.RowsReleased),
					zap.Int("failures", report.Failures))
			}
		}
	}
}
