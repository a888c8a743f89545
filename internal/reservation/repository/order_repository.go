package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bloomstock/internal/domain"
	"bloomstock/internal/errors"
)

// MySQLOrderRepository reads orders owned by the external order flow. The
// engine never creates or deletes orders, only inspects their status.
type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `
		SELECT id, companyId, status, createdAt, updatedAt
		FROM Orders
		WHERE id = ?
	`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.CompanyID, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return &order, nil
}

// FindStaleWithReservations returns orders created before cutoff, in one of
// the given statuses, that still hold at least one reservation row.
func (r *MySQLOrderRepository) FindStaleWithReservations(ctx context.Context, cutoff time.Time, statuses []string) ([]domain.Order, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := []interface{}{cutoff}
	for i, s := range statuses {
		placeholders[i] = "?"
		args = append(args, s)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT o.id, o.companyId, o.status, o.createdAt, o.updatedAt
		FROM Orders o
		JOIN Reservations r ON r.orderId = o.id
		WHERE o.createdAt < ?
		  AND o.status IN (%s)
		ORDER BY o.createdAt`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stale orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(&order.ID, &order.CompanyID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}
