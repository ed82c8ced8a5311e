package models

import "github.com/shopspring/decimal"

// Settlement represents one guest's confirmed payment against a split check.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// SessionID is the split session the payment belongs to.
	SessionID string

	// GuestIndex is the 0-based ordinal of the guest who paid.
	GuestIndex int

	// Amount is the amount captured at confirmation time.
	Amount decimal.Decimal

	// Method is how the guest paid.
	Method PaymentMethod

	// Mode is the split mode that was active when the payment was confirmed.
	Mode SplitMode

	// Sequence is the 1-based position of this settlement within its session.
	Sequence int

	// OperatorID is the staff member who ran the checkout, if known.
	OperatorID string

	// CreatedAt is the Unix timestamp when the settlement was confirmed.
	CreatedAt int64
}
