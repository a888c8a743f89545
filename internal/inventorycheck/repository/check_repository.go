package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bloomstock/internal/domain"
	"bloomstock/internal/errors"
)

type MySQLCheckRepository struct {
	db *sql.DB
}

func NewMySQLCheckRepository(db *sql.DB) *MySQLCheckRepository {
	return &MySQLCheckRepository{db: db}
}

func (r *MySQLCheckRepository) InsertSession(ctx context.Context, tx *sql.Tx, session domain.InventoryCheckSession) (uint, error) {
	query := `
		INSERT INTO InventoryCheckSessions (companyId, auditor, comment, status)
		VALUES (?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query, session.CompanyID, session.Auditor, session.Comment, session.Status)
	if err != nil {
		return 0, fmt.Errorf("inserting check session: %w", err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	lineQuery := `
		INSERT INTO InventoryCheckLines (sessionId, componentId, currentQuantity, actualQuantity, difference)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, line := range session.Lines {
		_, err := tx.ExecContext(ctx, lineQuery,
			sessionID, line.ComponentID, line.CurrentQuantity, line.ActualQuantity, line.Difference)
		if err != nil {
			return 0, fmt.Errorf("inserting check line: %w", err)
		}
	}

	return uint(sessionID), nil
}

func (r *MySQLCheckRepository) FindByID(ctx context.Context, id uint, companyID int) (*domain.InventoryCheckSession, error) {
	query := `
		SELECT id, companyId, auditor, comment, status, appliedAt, createdAt
		FROM InventoryCheckSessions
		WHERE id = ? AND companyId = ?
	`

	var session domain.InventoryCheckSession
	err := r.db.QueryRowContext(ctx, query, id, companyID).Scan(
		&session.ID, &session.CompanyID, &session.Auditor, &session.Comment,
		&session.Status, &session.AppliedAt, &session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("inventory check session with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying check session by id: %w", err)
	}

	lineQuery := `
		SELECT id, sessionId, componentId, currentQuantity, actualQuantity, difference
		FROM InventoryCheckLines
		WHERE sessionId = ?
		ORDER BY componentId
	`

	rows, err := r.db.QueryContext(ctx, lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("querying check lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.InventoryCheckLine
		err := rows.Scan(&line.ID, &line.SessionID, &line.ComponentID,
			&line.CurrentQuantity, &line.ActualQuantity, &line.Difference)
		if err != nil {
			return nil, fmt.Errorf("scanning check line row: %w", err)
		}
		session.Lines = append(session.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating check line rows: %w", err)
	}

	return &session, nil
}

// MarkApplied flips a pending session to applied. The status guard in the
// WHERE clause makes a second apply observe zero affected rows.
func (r *MySQLCheckRepository) MarkApplied(ctx context.Context, tx *sql.Tx, id uint, appliedAt time.Time) (bool, error) {
	query := `UPDATE InventoryCheckSessions SET status = ?, appliedAt = ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, domain.CheckStatusApplied, appliedAt, id, domain.CheckStatusPending)
	if err != nil {
		return false, fmt.Errorf("marking check session applied: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
