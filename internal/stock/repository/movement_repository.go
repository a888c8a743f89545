package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloomstock/internal/domain"
)

// MySQLMovementRepository appends and reads the stock ledger. Rows are never
// updated or deleted.
type MySQLMovementRepository struct {
	db *sql.DB
}

func NewMySQLMovementRepository(db *sql.DB) *MySQLMovementRepository {
	return &MySQLMovementRepository{db: db}
}

func (r *MySQLMovementRepository) Insert(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (uint, error) {
	query := `
		INSERT INTO StockMovements (componentId, kind, quantityChange, balanceAfter, description, orderId)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		m.ComponentID, string(m.Kind), m.QuantityChange, m.BalanceAfter, m.Description, m.OrderID,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting stock movement: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLMovementRepository) ListByComponent(ctx context.Context, componentID int, limit int) ([]domain.StockMovement, error) {
	query := `
		SELECT id, componentId, kind, quantityChange, balanceAfter, description, orderId, createdAt
		FROM StockMovements
		WHERE componentId = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, componentID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying stock movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		var kind string
		err := rows.Scan(&m.ID, &m.ComponentID, &kind, &m.QuantityChange, &m.BalanceAfter, &m.Description, &m.OrderID, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning stock movement row: %w", err)
		}
		m.Kind = domain.MovementKind(kind)
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock movement rows: %w", err)
	}

	return movements, nil
}

// SumQuantityChange replays the ledger for a component. Used by audits to
// verify the replay invariant against the component's current quantity.
func (r *MySQLMovementRepository) SumQuantityChange(ctx context.Context, componentID int) (int, error) {
	query := `SELECT COALESCE(SUM(quantityChange), 0) FROM StockMovements WHERE componentId = ?`

	var sum int
	if err := r.db.QueryRowContext(ctx, query, componentID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing stock movements: %w", err)
	}

	return sum, nil
}
