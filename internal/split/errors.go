package split

import "errors"

var (
	ErrInvalidConfiguration     = errors.New("invalid split configuration")
	ErrCannotShrinkBelowSettled = errors.New("cannot drop guests who already paid")
	ErrNoMethodSelected         = errors.New("no payment method selected")
	ErrUnknownGuestIndex        = errors.New("unknown guest index")
	ErrItemNotFound             = errors.New("line item not found")
	ErrSessionClosed            = errors.New("split session is closed")
	ErrGuestAlreadyPaid         = errors.New("guest already paid")
	ErrNoActivePayment          = errors.New("no payment in progress")
)
