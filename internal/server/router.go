package server

import (
	"database/sql"
	"net/http"
	"time"

	availabilityctrl "bloomstock/internal/availability/controller"
	checkctrl "bloomstock/internal/inventorycheck/controller"
	reservationctrl "bloomstock/internal/reservation/controller"
	stockctrl "bloomstock/internal/stock/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires every controller under /api/v1 and exposes /health.
func NewRouter(
	db *sql.DB,
	availability *availabilityctrl.AvailabilityController,
	reservations *reservationctrl.ReservationController,
	stock *stockctrl.StockController,
	checks *checkctrl.CheckController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", healthHandler(db, logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/availability/check", availability.Check)

		r.Route("/orders/{orderId}/reservations", func(r chi.Router) {
			r.Post("/", reservations.Reserve)
			r.Delete("/", reservations.Release)
		})
		r.Post("/reservations/sweep", reservations.Sweep)
		r.Get("/reservations/stats", reservations.Stats)

		r.Route("/components", func(r chi.Router) {
			r.Get("/low-stock", stock.ListLowStock)
			r.Route("/{componentId}", func(r chi.Router) {
				r.Post("/deliveries", stock.RecordDelivery)
				r.Post("/sales", stock.RecordSale)
				r.Post("/write-offs", stock.RecordWriteOff)
				r.Post("/price-changes", stock.RecordPriceChange)
				r.Get("/movements", stock.ListMovements)
			})
		})

		r.Route("/inventory-checks", func(r chi.Router) {
			r.Post("/", checks.Create)
			r.Get("/{sessionId}", checks.Get)
			r.Post("/{sessionId}/apply", checks.Apply)
		})
	})

	return r
}

func healthHandler(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}
