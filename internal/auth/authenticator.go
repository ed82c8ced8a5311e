package auth

import (
	"context"

	"github.com/mmynk/tablesplit/internal/models"
)

// Authenticator defines the interface for operator authentication.
// This abstraction allows swapping between credential types (PIN, badge, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new operator with the given login name and credential.
	Register(ctx context.Context, name, displayName, credential string) (*models.Operator, error)

	// Authenticate verifies the operator's credential and returns the operator if successful.
	Authenticate(ctx context.Context, name, credential string) (*models.Operator, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
