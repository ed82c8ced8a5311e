package split

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tablesplit/internal/calculator"
	"github.com/mmynk/tablesplit/internal/models"
)

// GuestView is one guest's line in a View.
type GuestView struct {
	Index  int
	Status models.PaymentStatus

	// Owed is what confirming this guest would capture now; for a paid
	// guest it is the current share rounded to the cent.
	Owed decimal.Decimal

	// Settled and Method are set only once the guest paid.
	Settled decimal.Decimal
	Method  models.PaymentMethod

	Items  []string
	Custom decimal.Decimal
}

// View is a consistent read of the whole session.
type View struct {
	ID        string
	Mode      models.SplitMode
	Total     decimal.Decimal
	Remaining decimal.Decimal
	Guests    []GuestView
	Flow      FlowState
	Coverage  calculator.Coverage
	Closed    bool
}

// View returns every derived value in one atomic read.
func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.inputLocked()
	coverage, err := calculator.CheckCoverage(s.mode, in)
	if err != nil {
		return View{}, err
	}

	guests := make([]GuestView, len(s.guests))
	for g, st := range s.guests {
		owed, err := s.owedLocked(g)
		if err != nil {
			return View{}, err
		}
		guests[g] = GuestView{
			Index:   g,
			Status:  s.statusLocked(g),
			Owed:    owed,
			Settled: st.settled,
			Method:  st.method,
			Items:   calculator.AssignedItems(s.snapshot.Items, s.assignments, g),
			Custom:  s.custom[g],
		}
	}

	return View{
		ID:        s.id,
		Mode:      s.mode,
		Total:     s.snapshot.Total,
		Remaining: s.remainingLocked(),
		Guests:    guests,
		Flow:      s.flow,
		Coverage:  coverage,
		Closed:    s.closedLocked(),
	}, nil
}

func (s *Session) owedLocked(guest int) (decimal.Decimal, error) {
	if !s.guests[guest].paid {
		return s.amountDueLocked(guest)
	}
	share, err := calculator.GuestTotal(s.mode, s.inputLocked(), guest)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.RoundCents(share), nil
}

// Status returns guest's position in the payment flow.
func (s *Session) Status(guest int) (models.PaymentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGuestLocked(guest); err != nil {
		return "", err
	}
	return s.statusLocked(guest), nil
}

// SettledAmount returns the amount captured when guest paid.
func (s *Session) SettledAmount(guest int) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGuestLocked(guest); err != nil {
		return decimal.Zero, false, err
	}
	st := s.guests[guest]
	return st.settled, st.paid, nil
}
