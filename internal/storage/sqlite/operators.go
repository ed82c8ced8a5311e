package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/tablesplit/internal/models"
	"github.com/mmynk/tablesplit/internal/storage"
)

// CreateOperator inserts a new operator into the database.
func (s *SQLiteStore) CreateOperator(ctx context.Context, operator *models.Operator) error {
	query := `
		INSERT INTO operators (id, name, display_name, pin_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		operator.ID,
		operator.Name,
		operator.DisplayName,
		operator.PINHash,
		operator.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}

	return nil
}

// GetOperatorByName retrieves an operator by login name.
func (s *SQLiteStore) GetOperatorByName(ctx context.Context, name string) (*models.Operator, error) {
	return s.getOperator(ctx, "name", name)
}

// GetOperatorByID retrieves an operator by ID.
func (s *SQLiteStore) GetOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	return s.getOperator(ctx, "id", id)
}

func (s *SQLiteStore) getOperator(ctx context.Context, column, value string) (*models.Operator, error) {
	query := `
		SELECT id, name, display_name, pin_hash, created_at
		FROM operators
		WHERE ` + column + ` = ?
	`

	operator := &models.Operator{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&operator.ID,
		&operator.Name,
		&operator.DisplayName,
		&operator.PINHash,
		&operator.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("operator %s: %w", value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator by %s: %w", column, err)
	}

	return operator, nil
}
