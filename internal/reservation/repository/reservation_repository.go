package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloomstock/internal/domain"
)

type MySQLReservationRepository struct {
	db *sql.DB
}

func NewMySQLReservationRepository(db *sql.DB) *MySQLReservationRepository {
	return &MySQLReservationRepository{db: db}
}

func (r *MySQLReservationRepository) InsertBatch(ctx context.Context, tx *sql.Tx, reservations []domain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	placeholders := make([]string, len(reservations))
	args := make([]interface{}, 0, len(reservations)*3)
	for i, res := range reservations {
		placeholders[i] = "(?, ?, ?)"
		args = append(args, res.OrderID, res.ComponentID, res.ReservedQuantity)
	}

	query := fmt.Sprintf(
		`INSERT INTO Reservations (orderId, componentId, reservedQuantity) VALUES %s`,
		strings.Join(placeholders, ", "),
	)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting reservations: %w", err)
	}

	return nil
}

// DeleteByOrderID releases every reservation of an order. Safe to call when
// nothing is held; the second call is a no-op.
func (r *MySQLReservationRepository) DeleteByOrderID(ctx context.Context, orderID uint) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Reservations WHERE orderId = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("deleting reservations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *MySQLReservationRepository) SumByComponentIDs(ctx context.Context, ids []int) (map[int]int, error) {
	return r.sumByComponentIDs(ctx, r.db, ids)
}

// SumByComponentIDsTx reads reservation sums inside the reserve transaction,
// after the component rows are locked, so the re-check cannot race a
// concurrent reserve on the same components.
func (r *MySQLReservationRepository) SumByComponentIDsTx(ctx context.Context, tx *sql.Tx, ids []int) (map[int]int, error) {
	return r.sumByComponentIDs(ctx, tx, ids)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *MySQLReservationRepository) sumByComponentIDs(ctx context.Context, q queryer, ids []int) (map[int]int, error) {
	sums := make(map[int]int)
	if len(ids) == 0 {
		return sums, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT componentId, COALESCE(SUM(reservedQuantity), 0)
		FROM Reservations
		WHERE componentId IN (%s)
		GROUP BY componentId`,
		strings.Join(placeholders, ", "),
	)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservation sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var componentID, sum int
		if err := rows.Scan(&componentID, &sum); err != nil {
			return nil, fmt.Errorf("scanning reservation sum row: %w", err)
		}
		sums[componentID] = sum
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation sum rows: %w", err)
	}

	return sums, nil
}

func (r *MySQLReservationRepository) ListByOrderID(ctx context.Context, orderID uint) ([]domain.Reservation, error) {
	query := `
		SELECT id, orderId, componentId, reservedQuantity, createdAt
		FROM Reservations
		WHERE orderId = ?
		ORDER BY componentId
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying reservations by order: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(&res.ID, &res.OrderID, &res.ComponentID, &res.ReservedQuantity, &res.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	return reservations, nil
}

// ListAll feeds the janitor's statistics mode.
func (r *MySQLReservationRepository) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	query := `
		SELECT id, orderId, componentId, reservedQuantity, createdAt
		FROM Reservations
		ORDER BY createdAt
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(&res.ID, &res.OrderID, &res.ComponentID, &res.ReservedQuantity, &res.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	return reservations, nil
}
