package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloomstock/internal/domain"
	"bloomstock/internal/errors"
)

type MySQLComponentRepository struct {
	db *sql.DB
}

func NewMySQLComponentRepository(db *sql.DB) *MySQLComponentRepository {
	return &MySQLComponentRepository{db: db}
}

const componentColumns = `id, companyId, name, quantity, costPrice, retailPrice, minQuantity, createdAt, updatedAt`

func scanComponent(row interface{ Scan(...interface{}) error }) (*domain.Component, error) {
	var c domain.Component
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Quantity,
		&c.CostPrice, &c.RetailPrice, &c.MinQuantity,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MySQLComponentRepository) FindByID(ctx context.Context, id int, companyID int) (*domain.Component, error) {
	query := fmt.Sprintf(`SELECT %s FROM Components WHERE id = ? AND companyId = ?`, componentColumns)

	c, err := scanComponent(r.db.QueryRowContext(ctx, query, id, companyID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("component with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying component by id: %w", err)
	}

	return c, nil
}

// FindByIDForUpdate locks the component row for the duration of the caller's
// transaction. Every stock-mutating path goes through this lock.
func (r *MySQLComponentRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int, companyID int) (*domain.Component, error) {
	query := fmt.Sprintf(`SELECT %s FROM Components WHERE id = ? AND companyId = ? FOR UPDATE`, componentColumns)

	c, err := scanComponent(tx.QueryRowContext(ctx, query, id, companyID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("component with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying component for update: %w", err)
	}

	return c, nil
}

func (r *MySQLComponentRepository) FindByIDs(ctx context.Context, ids []int, companyID int) (map[int]domain.Component, error) {
	return r.findByIDs(ctx, r.db, ids, companyID, false)
}

// FindByIDsForUpdate locks all requested components inside tx. The ORDER BY id
// keeps lock acquisition order identical across concurrent transactions.
func (r *MySQLComponentRepository) FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int, companyID int) (map[int]domain.Component, error) {
	return r.findByIDs(ctx, tx, ids, companyID, true)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *MySQLComponentRepository) findByIDs(ctx context.Context, q queryer, ids []int, companyID int, forUpdate bool) (map[int]domain.Component, error) {
	components := make(map[int]domain.Component)
	if len(ids) == 0 {
		return components, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, companyID)

	query := fmt.Sprintf(`
		SELECT %s
		FROM Components
		WHERE id IN (%s)
		  AND companyId = ?
		ORDER BY id`,
		componentColumns, strings.Join(placeholders, ", "),
	)
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Component
		err := rows.Scan(
			&c.ID, &c.CompanyID, &c.Name, &c.Quantity,
			&c.CostPrice, &c.RetailPrice, &c.MinQuantity,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning component row: %w", err)
		}
		components[c.ID] = c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating component rows: %w", err)
	}

	return components, nil
}

func (r *MySQLComponentRepository) UpdateQuantity(ctx context.Context, tx *sql.Tx, id int, quantity int) error {
	query := `UPDATE Components SET quantity = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("updating component quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("component with id %d not found", id))
	}

	return nil
}

func (r *MySQLComponentRepository) UpdatePrices(ctx context.Context, tx *sql.Tx, id int, costPrice, retailPrice *int) error {
	sets := []string{}
	args := []interface{}{}
	if costPrice != nil {
		sets = append(sets, "costPrice = ?")
		args = append(args, *costPrice)
	}
	if retailPrice != nil {
		sets = append(sets, "retailPrice = ?")
		args = append(args, *retailPrice)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE Components SET %s WHERE id = ?`, strings.Join(sets, ", "))

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating component prices: %w", err)
	}

	return nil
}

func (r *MySQLComponentRepository) FindLowStock(ctx context.Context, companyID int) ([]domain.Component, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM Components
		WHERE companyId = ?
		  AND quantity <= minQuantity
		ORDER BY quantity ASC`, componentColumns)

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying low stock components: %w", err)
	}
	defer rows.Close()

	var components []domain.Component
	for rows.Next() {
		var c domain.Component
		err := rows.Scan(
			&c.ID, &c.CompanyID, &c.Name, &c.Quantity,
			&c.CostPrice, &c.RetailPrice, &c.MinQuantity,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning component row: %w", err)
		}
		components = append(components, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating component rows: %w", err)
	}

	return components, nil
}
