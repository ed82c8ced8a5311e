package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tablesplit/internal/models"
	"github.com/mmynk/tablesplit/internal/storage"
)

const settlementColumns = `id, session_id, guest_index, amount, method, mode, sequence, operator_id, created_at`

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	var operatorID interface{} = nil
	if settlement.OperatorID != "" {
		operatorID = settlement.OperatorID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.SessionID, settlement.GuestIndex, settlement.Amount.String(),
		string(settlement.Method), string(settlement.Mode), settlement.Sequence, operatorID, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`,
		settlementID,
	)

	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsBySession retrieves all settlements of a split session.
func (s *SQLiteStore) ListSettlementsBySession(ctx context.Context, sessionID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE session_id = ? ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by session: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var method, mode string
	var operatorID sql.NullString

	if err := row.Scan(&settlement.ID, &settlement.SessionID, &settlement.GuestIndex, &settlement.Amount,
		&method, &mode, &settlement.Sequence, &operatorID, &settlement.CreatedAt); err != nil {
		return nil, err
	}

	settlement.Method = models.PaymentMethod(method)
	settlement.Mode = models.SplitMode(mode)
	if operatorID.Valid {
		settlement.OperatorID = operatorID.String
	}
	return settlement, nil
}
