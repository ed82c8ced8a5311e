package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tablesplit/internal/models"
	"github.com/mmynk/tablesplit/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid operator name or PIN")
	ErrWeakPIN            = errors.New("PIN must be 4 to 8 digits")
	ErrOperatorExists     = errors.New("operator name already registered")
)

// PINAuthenticator authenticates operators with a numeric PIN hashed by bcrypt.
type PINAuthenticator struct {
	storage storage.OperatorStore
}

// NewPINAuthenticator creates a new PIN-based authenticator.
func NewPINAuthenticator(storage storage.OperatorStore) *PINAuthenticator {
	return &PINAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks the PIN is 4 to 8 digits.
func (a *PINAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 4 || len(credential) > 8 {
		return ErrWeakPIN
	}
	for _, r := range credential {
		if r < '0' || r > '9' {
			return ErrWeakPIN
		}
	}
	return nil
}

// Register creates a new operator with a hashed PIN.
func (a *PINAuthenticator) Register(ctx context.Context, name, displayName, credential string) (*models.Operator, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetOperatorByName(ctx, name)
	if err == nil && existing != nil {
		return nil, ErrOperatorExists
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up operator: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	operator := models.NewOperator(name, displayName, string(hashed))
	if err := a.storage.CreateOperator(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	return operator, nil
}

// Authenticate verifies the name and PIN, returning the operator if valid.
func (a *PINAuthenticator) Authenticate(ctx context.Context, name, credential string) (*models.Operator, error) {
	operator, err := a.storage.GetOperatorByName(ctx, name)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PINHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return operator, nil
}
