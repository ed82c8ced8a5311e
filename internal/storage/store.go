// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tablesplit/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger and operator storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	SettlementStore
	OperatorStore

	// Close releases any resources held by the store.
	Close() error
}

// SettlementStore is the settlement ledger.
type SettlementStore interface {
	// CreateSettlement appends a settlement to the ledger.
	// The settlement.ID field will be populated by the store if empty.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by its ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsBySession returns a session's settlements in confirmation order.
	ListSettlementsBySession(ctx context.Context, sessionID string) ([]*models.Settlement, error)
}

// OperatorStore persists POS staff accounts.
type OperatorStore interface {
	CreateOperator(ctx context.Context, operator *models.Operator) error

	// GetOperatorByName returns ErrNotFound if no operator has that name.
	GetOperatorByName(ctx context.Context, name string) (*models.Operator, error)

	// GetOperatorByID returns ErrNotFound if no operator has that ID.
	GetOperatorByID(ctx context.Context, id string) (*models.Operator, error)
}
