// Package split implements the bill-splitting engine used at POS checkout.
//
// A Session partitions one finalized check across a variable number of guests
// under three strategies (equal shares, item assignment, custom amounts),
// tracks which guests have paid, and guarantees the settled sum never exceeds
// the check total. Every operation is atomic; rejected operations leave the
// session untouched.
package split

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tablesplit/internal/calculator"
	"github.com/mmynk/tablesplit/internal/models"
)

// MinGuests is the smallest party a split can have.
const MinGuests = 2

// SettlementFunc receives each confirmed payment, in confirmation order.
// It is called outside the session lock and its outcome is never fed back
// into the session.
type SettlementFunc func(models.Settlement)

type guestState struct {
	paid    bool
	method  models.PaymentMethod
	settled decimal.Decimal
}

// Session is the aggregate root of one split checkout.
type Session struct {
	mu sync.Mutex
	// emitMu keeps settlement callbacks in confirmation order.
	emitMu sync.Mutex

	id            string
	snapshot      models.CartSnapshot
	initialGuests int
	onSettle      SettlementFunc
	now           func() time.Time

	mode        models.SplitMode
	guests      []guestState
	assignments map[string]int
	custom      map[int]decimal.Decimal
	flow        FlowState

	// last is the most recent confirmation, replayed on a repeated confirm.
	last     *models.Settlement
	sequence int
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithSettlementFunc registers the ledger collaborator.
func WithSettlementFunc(fn SettlementFunc) Option {
	return func(s *Session) { s.onSettle = fn }
}

// WithClock overrides time.Now for settlement timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession seeds a split from a cart snapshot. All guests start unpaid and
// the mode is Equal.
//
// Every line item needs a unique non-empty ID and a positive quantity. Unit
// prices must not be negative; zero-price (comped) items are accepted. The
// total must not be negative and guestCount must be at least MinGuests.
// Anything else fails with ErrInvalidConfiguration.
func NewSession(snapshot models.CartSnapshot, guestCount int, opts ...Option) (*Session, error) {
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}
	if guestCount < MinGuests {
		return nil, fmt.Errorf("%w: guest count %d below minimum %d", ErrInvalidConfiguration, guestCount, MinGuests)
	}

	items := make([]models.LineItem, len(snapshot.Items))
	copy(items, snapshot.Items)

	s := &Session{
		id:            uuid.New().String(),
		snapshot:      models.CartSnapshot{Items: items, Total: snapshot.Total},
		initialGuests: guestCount,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s, nil
}

func validateSnapshot(snapshot models.CartSnapshot) error {
	if snapshot.Total.IsNegative() {
		return fmt.Errorf("%w: total %s is negative", ErrInvalidConfiguration, snapshot.Total)
	}
	seen := make(map[string]bool, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if item.ID == "" {
			return fmt.Errorf("%w: line item without id", ErrInvalidConfiguration)
		}
		if seen[item.ID] {
			return fmt.Errorf("%w: duplicate line item %q", ErrInvalidConfiguration, item.ID)
		}
		seen[item.ID] = true
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %q has negative price %s", ErrInvalidConfiguration, item.ID, item.UnitPrice)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has quantity %d", ErrInvalidConfiguration, item.ID, item.Quantity)
		}
	}
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the cart the session was seeded from.
func (s *Session) Snapshot() models.CartSnapshot {
	return s.snapshot
}

// GuestCount returns the current number of guests.
func (s *Session) GuestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guests)
}

// Mode returns the active split mode.
func (s *Session) Mode() models.SplitMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Flow returns the payment flow state.
func (s *Session) Flow() FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// Closed reports whether every guest has paid.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedLocked()
}

// SetGuestCount grows or shrinks the party. Shrinking drops the highest
// guests together with their item assignments and custom amounts; it is
// rejected if any of those guests already paid.
func (s *Session) SetGuestCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closedLocked() {
		return ErrSessionClosed
	}
	if n < MinGuests {
		return fmt.Errorf("%w: guest count %d below minimum %d", ErrInvalidConfiguration, n, MinGuests)
	}
	for g := n; g < len(s.guests); g++ {
		if s.guests[g].paid {
			return fmt.Errorf("%w: guest %d paid, cannot shrink to %d", ErrCannotShrinkBelowSettled, g, n)
		}
	}

	if n < len(s.guests) {
		for id, owner := range s.assignments {
			if owner >= n {
				delete(s.assignments, id)
			}
		}
		for g := range s.custom {
			if g >= n {
				delete(s.custom, g)
			}
		}
		if g, ok := activeGuest(s.flow); ok && g >= n {
			s.flow = Idle{}
		}
		s.guests = s.guests[:n]
		return nil
	}
	for len(s.guests) < n {
		s.guests = append(s.guests, guestState{})
	}
	return nil
}

// SetMode switches the allocation strategy. Item assignments and custom
// amounts are kept so the operator can compare strategies.
func (s *Session) SetMode(mode models.SplitMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closedLocked() {
		return ErrSessionClosed
	}
	s.mode = mode
	return nil
}

// SetCustomAmount records the amount guest will pay in Custom mode.
// Amounts are not normalized against the total; see Coverage.
func (s *Session) SetCustomAmount(guest int, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: custom amount %s is negative", ErrInvalidConfiguration, amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closedLocked() {
		return ErrSessionClosed
	}
	if err := s.checkGuestLocked(guest); err != nil {
		return err
	}
	s.custom[guest] = amount
	return nil
}

// GuestTotal returns what guest owes under the active mode. It never
// mutates the session.
func (s *Session) GuestTotal(guest int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGuestLocked(guest); err != nil {
		return decimal.Zero, err
	}
	return calculator.GuestTotal(s.mode, s.inputLocked(), guest)
}

// Remaining returns the total minus every settled amount. It is never negative.
func (s *Session) Remaining() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

// Coverage reports how the active allocation relates to the total.
func (s *Session) Coverage() (calculator.Coverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculator.CheckCoverage(s.mode, s.inputLocked())
}

// Reset returns the session to its seeded state: Equal mode, the initial
// guest count, nobody paid, no assignments or custom amounts.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.mode = models.SplitModeEqual
	s.guests = make([]guestState, s.initialGuests)
	s.assignments = make(map[string]int)
	s.custom = make(map[int]decimal.Decimal)
	s.flow = Idle{}
	s.last = nil
}

func (s *Session) closedLocked() bool {
	for _, g := range s.guests {
		if !g.paid {
			return false
		}
	}
	return true
}

func (s *Session) checkGuestLocked(guest int) error {
	if guest < 0 || guest >= len(s.guests) {
		return fmt.Errorf("%w: %d (guests: %d)", ErrUnknownGuestIndex, guest, len(s.guests))
	}
	return nil
}

func (s *Session) inputLocked() calculator.Input {
	return calculator.Input{
		Total:       s.snapshot.Total,
		Items:       s.snapshot.Items,
		GuestCount:  len(s.guests),
		Assignments: s.assignments,
		Custom:      s.custom,
	}
}

func (s *Session) remainingLocked() decimal.Decimal {
	var settled []decimal.Decimal
	for _, g := range s.guests {
		if g.paid {
			settled = append(settled, g.settled)
		}
	}
	return calculator.Remaining(s.snapshot.Total, settled)
}

func (s *Session) statusLocked(guest int) models.PaymentStatus {
	if s.guests[guest].paid {
		return models.PaymentStatusPaid
	}
	if g, ok := activeGuest(s.flow); ok && g == guest {
		return models.PaymentStatusSelectingMethod
	}
	return models.PaymentStatusUnpaid
}
