package split

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tablesplit/internal/calculator"
	"github.com/mmynk/tablesplit/internal/models"
)

// Confirmation is the result of ConfirmPayment.
type Confirmation struct {
	Settlement models.Settlement

	// Replayed is true when the call repeated an earlier confirmation and
	// nothing new was settled.
	Replayed bool
}

// BeginPayment points the payment flow at guest. A payment already in
// progress for another guest is abandoned and that guest goes back to unpaid.
func (s *Session) BeginPayment(guest int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closedLocked() {
		return ErrSessionClosed
	}
	if err := s.checkGuestLocked(guest); err != nil {
		return err
	}
	if s.guests[guest].paid {
		return fmt.Errorf("%w: guest %d", ErrGuestAlreadyPaid, guest)
	}
	s.flow = Selecting{Guest: guest}
	s.last = nil
	return nil
}

// ChooseMethod records the candidate method for the paying guest. The guest
// is not settled until ConfirmPayment.
func (s *Session) ChooseMethod(method models.PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidConfiguration, method)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := activeGuest(s.flow)
	if !ok {
		return ErrNoActivePayment
	}
	s.flow = MethodChosen{Guest: guest, Method: method}
	return nil
}

// CancelPayment abandons the payment in progress. Calling it with no
// payment in progress does nothing.
func (s *Session) CancelPayment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = Idle{}
}

// ConfirmPayment settles the paying guest with the amount owed right now.
// The amount is captured and never recomputed. Repeating the call before a
// new payment begins returns the same settlement without notifying the
// ledger again.
func (s *Session) ConfirmPayment() (Confirmation, error) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	c, err := s.confirmLocked()
	s.mu.Unlock()
	if err != nil {
		return Confirmation{}, err
	}

	if !c.Replayed && s.onSettle != nil {
		s.onSettle(c.Settlement)
	}
	return c, nil
}

func (s *Session) confirmLocked() (Confirmation, error) {
	var chosen MethodChosen
	switch st := s.flow.(type) {
	case Idle:
		if s.last != nil {
			return Confirmation{Settlement: *s.last, Replayed: true}, nil
		}
		return Confirmation{}, ErrNoActivePayment
	case Selecting:
		return Confirmation{}, fmt.Errorf("%w: guest %d", ErrNoMethodSelected, st.Guest)
	case MethodChosen:
		chosen = st
	}

	amount, err := s.amountDueLocked(chosen.Guest)
	if err != nil {
		return Confirmation{}, err
	}

	s.sequence++
	settlement := models.Settlement{
		ID:         uuid.New().String(),
		SessionID:  s.id,
		GuestIndex: chosen.Guest,
		Amount:     amount,
		Method:     chosen.Method,
		Mode:       s.mode,
		Sequence:   s.sequence,
		CreatedAt:  s.now().Unix(),
	}
	s.guests[chosen.Guest] = guestState{paid: true, method: chosen.Method, settled: amount}
	s.flow = Idle{}
	s.last = &settlement
	return Confirmation{Settlement: settlement}, nil
}

// AmountDue returns what ConfirmPayment would capture for guest right now:
// the share rounded to the cent and capped at the remaining balance. In
// Equal mode the last unpaid guest also absorbs the cents lost to rounding.
func (s *Session) AmountDue(guest int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGuestLocked(guest); err != nil {
		return decimal.Zero, err
	}
	return s.amountDueLocked(guest)
}

func (s *Session) amountDueLocked(guest int) (decimal.Decimal, error) {
	share, err := calculator.GuestTotal(s.mode, s.inputLocked(), guest)
	if err != nil {
		return decimal.Zero, err
	}
	due := calculator.RoundCents(share)
	remaining := s.remainingLocked()
	if s.mode == models.SplitModeEqual && s.unpaidLocked() == 1 && !s.guests[guest].paid &&
		calculator.WithinRoundingResidual(due, remaining, len(s.guests)) {
		return remaining, nil
	}
	return calculator.CapAtRemaining(due, remaining), nil
}

func (s *Session) unpaidLocked() int {
	n := 0
	for _, g := range s.guests {
		if !g.paid {
			n++
		}
	}
	return n
}
