package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloomstock/internal/domain"
)

// MySQLBOMRepository reads bill-of-materials lines. The catalog writes them;
// this service only ever reads, so no mutating methods exist here.
type MySQLBOMRepository struct {
	db *sql.DB
}

func NewMySQLBOMRepository(db *sql.DB) *MySQLBOMRepository {
	return &MySQLBOMRepository{db: db}
}

func (r *MySQLBOMRepository) FindByProductIDs(ctx context.Context, productIDs []int) (map[int][]domain.BOMLine, error) {
	lines := make(map[int][]domain.BOMLine)
	if len(productIDs) == 0 {
		return lines, nil
	}

	placeholders := make([]string, len(productIDs))
	args := make([]interface{}, 0, len(productIDs))
	for i, id := range productIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT id, productId, componentId, quantityPerUnit, isOptional
		FROM BomLines
		WHERE productId IN (%s)
		ORDER BY productId, componentId`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bom lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.BOMLine
		err := rows.Scan(&l.ID, &l.ProductID, &l.ComponentID, &l.QuantityPerUnit, &l.IsOptional)
		if err != nil {
			return nil, fmt.Errorf("scanning bom line row: %w", err)
		}
		lines[l.ProductID] = append(lines[l.ProductID], l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bom line rows: %w", err)
	}

	return lines, nil
}
