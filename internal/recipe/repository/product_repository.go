package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloomstock/internal/domain"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

// FindByIDsAndCompany returns the live products among ids. Missing, deleted and
// inactive products are simply absent from the result; callers treat absence
// as unavailable.
func (r *MySQLProductRepository) FindByIDsAndCompany(ctx context.Context, ids []int, companyID int) (map[int]domain.Product, error) {
	products := make(map[int]domain.Product)
	if len(ids) == 0 {
		return products, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, companyID)

	query := fmt.Sprintf(`
		SELECT id, companyId, name, isActive, isDeleted, createdAt, updatedAt
		FROM Products
		WHERE id IN (%s)
		  AND companyId = ?
		  AND isActive = 1
		  AND isDeleted = 0`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.IsActive, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}
