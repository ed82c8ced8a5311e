package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator represents a POS staff account that can run checkout.
type Operator struct {
	// ID is the unique identifier for the operator (UUID format).
	ID string

	// Name is the login name shown on the terminal (unique).
	Name string

	// DisplayName is shown on receipts and in the ledger.
	DisplayName string

	// PINHash is the bcrypt hash of the operator's PIN.
	PINHash string

	// CreatedAt is the Unix timestamp when the operator was created.
	CreatedAt int64
}

// NewOperator creates an operator with a fresh ID and creation time.
func NewOperator(name, displayName, pinHash string) *Operator {
	return &Operator{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: displayName,
		PINHash:     pinHash,
		CreatedAt:   time.Now().Unix(),
	}
}
