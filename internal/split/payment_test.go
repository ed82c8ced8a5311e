package split

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tablesplit/internal/calculator"
	"github.com/mmynk/tablesplit/internal/models"
)

// recorder collects settlement events.
type recorder struct {
	mu     sync.Mutex
	events []models.Settlement
}

func (r *recorder) settle(s models.Settlement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) all() []models.Settlement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Settlement(nil), r.events...)
}

func pay(t *testing.T, s *Session, guest int, method models.PaymentMethod) models.Settlement {
	t.Helper()
	require.NoError(t, s.BeginPayment(guest))
	require.NoError(t, s.ChooseMethod(method))
	c, err := s.ConfirmPayment()
	require.NoError(t, err)
	require.False(t, c.Replayed)
	return c.Settlement
}

func TestPaymentFlowTransitions(t *testing.T) {
	rec := &recorder{}
	clock := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	s := newSession(t, abcCart(), 2,
		WithID("s-1"),
		WithSettlementFunc(rec.settle),
		WithClock(func() time.Time { return clock }),
	)

	require.NoError(t, s.BeginPayment(1))
	assert.Equal(t, Selecting{Guest: 1}, s.Flow())

	require.NoError(t, s.ChooseMethod(models.PaymentMethodCard))
	assert.Equal(t, MethodChosen{Guest: 1, Method: models.PaymentMethodCard}, s.Flow())
	status, err := s.Status(1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSelectingMethod, status)

	c, err := s.ConfirmPayment()
	require.NoError(t, err)
	assert.Equal(t, Idle{}, s.Flow())
	assert.Equal(t, "s-1", c.Settlement.SessionID)
	assert.Equal(t, 1, c.Settlement.GuestIndex)
	assert.Equal(t, models.PaymentMethodCard, c.Settlement.Method)
	assert.Equal(t, models.SplitModeEqual, c.Settlement.Mode)
	assert.Equal(t, 1, c.Settlement.Sequence)
	assert.Equal(t, clock.Unix(), c.Settlement.CreatedAt)
	assert.True(t, c.Settlement.Amount.Equal(d("50")))

	status, err = s.Status(1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	events := rec.all()
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.Equal(d("50")))
	assert.Equal(t, 1, events[0].GuestIndex)
}

func TestConfirmWithoutMethod(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, abcCart(), 2, WithSettlementFunc(rec.settle))

	_, err := s.ConfirmPayment()
	require.ErrorIs(t, err, ErrNoActivePayment)

	require.NoError(t, s.BeginPayment(0))
	_, err = s.ConfirmPayment()
	require.ErrorIs(t, err, ErrNoMethodSelected)

	assert.Equal(t, Selecting{Guest: 0}, s.Flow())
	assert.Empty(t, rec.all())
}

func TestChooseMethod_Rejections(t *testing.T) {
	s := newSession(t, abcCart(), 2)

	require.ErrorIs(t, s.ChooseMethod(models.PaymentMethodCash), ErrNoActivePayment)

	require.NoError(t, s.BeginPayment(0))
	require.ErrorIs(t, s.ChooseMethod(models.PaymentMethod("iou")), ErrInvalidConfiguration)
	assert.Equal(t, Selecting{Guest: 0}, s.Flow())
}

func TestBeginPaymentAbandonsPrevious(t *testing.T) {
	s := newSession(t, abcCart(), 3)

	require.NoError(t, s.BeginPayment(0))
	require.NoError(t, s.ChooseMethod(models.PaymentMethodCash))
	require.NoError(t, s.BeginPayment(2))

	assert.Equal(t, Selecting{Guest: 2}, s.Flow())
	status, err := s.Status(0)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, status)
}

func TestCancelPayment(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, abcCart(), 2, WithSettlementFunc(rec.settle))

	s.CancelPayment()
	assert.Equal(t, Idle{}, s.Flow())

	require.NoError(t, s.BeginPayment(0))
	require.NoError(t, s.ChooseMethod(models.PaymentMethodCard))
	s.CancelPayment()

	assert.Equal(t, Idle{}, s.Flow())
	status, err := s.Status(0)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, status)
	assert.Empty(t, rec.all())

	_, err = s.ConfirmPayment()
	require.ErrorIs(t, err, ErrNoActivePayment)
}

func TestConfirmTwiceSettlesOnce(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, abcCart(), 3, WithSettlementFunc(rec.settle))

	first := pay(t, s, 0, models.PaymentMethodCard)
	again, err := s.ConfirmPayment()
	require.NoError(t, err)

	assert.True(t, again.Replayed)
	assert.Equal(t, first.Sequence, again.Settlement.Sequence)
	assert.True(t, first.Amount.Equal(again.Settlement.Amount))
	assert.Len(t, rec.all(), 1)
	assert.True(t, s.Remaining().Equal(d("66.67")))
}

func TestBeginPayment_PaidGuest(t *testing.T) {
	s := newSession(t, abcCart(), 2)
	pay(t, s, 0, models.PaymentMethodCash)

	require.ErrorIs(t, s.BeginPayment(0), ErrGuestAlreadyPaid)
	require.ErrorIs(t, s.BeginPayment(4), ErrUnknownGuestIndex)
	assert.Equal(t, Idle{}, s.Flow())
}

func TestPaidAmountIsImmutable(t *testing.T) {
	s := newSession(t, abcCart(), 2)
	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(0, "A"))
	pay(t, s, 0, models.PaymentMethodCard)

	require.NoError(t, s.AssignItem(0, "C"))
	require.NoError(t, s.AssignItem(1, "A"))
	require.NoError(t, s.SetMode(models.SplitModeCustom))
	require.NoError(t, s.SetCustomAmount(0, d("99")))
	require.NoError(t, s.SetMode(models.SplitModeEqual))

	settled, paid, err := s.SettledAmount(0)
	require.NoError(t, err)
	assert.True(t, paid)
	assert.True(t, settled.Equal(d("30")), "settled = %s", settled)
	assert.True(t, s.Remaining().Equal(d("70")))
}

func TestEqualSettlementClosesAtZero(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, models.CartSnapshot{Total: d("100")}, 3, WithSettlementFunc(rec.settle))

	pay(t, s, 2, models.PaymentMethodCash)
	pay(t, s, 0, models.PaymentMethodCard)
	last := pay(t, s, 1, models.PaymentMethodMobile)

	assert.True(t, last.Amount.Equal(d("33.34")), "last guest absorbs the residual, got %s", last.Amount)
	assert.True(t, s.Remaining().IsZero())
	assert.True(t, s.Closed())

	events := rec.all()
	require.Len(t, events, 3)
	assert.Equal(t, []int{2, 0, 1}, []int{events[0].GuestIndex, events[1].GuestIndex, events[2].GuestIndex})
	assert.Equal(t, []int{1, 2, 3}, []int{events[0].Sequence, events[1].Sequence, events[2].Sequence})
}

func TestEqualSettlementAfterSplitChanges(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) *Session
		guest         int
		wantSettled   string
		wantRemaining string
	}{
		{
			name: "shrink then settle",
			setup: func(t *testing.T) *Session {
				s := newSession(t, models.CartSnapshot{Total: d("100")}, 4)
				pay(t, s, 0, models.PaymentMethodCard)
				require.NoError(t, s.SetGuestCount(2))
				return s
			},
			guest:         1,
			wantSettled:   "50",
			wantRemaining: "25",
		},
		{
			name: "custom then equal",
			setup: func(t *testing.T) *Session {
				s := newSession(t, models.CartSnapshot{Total: d("100")}, 2)
				require.NoError(t, s.SetMode(models.SplitModeCustom))
				require.NoError(t, s.SetCustomAmount(0, d("30")))
				pay(t, s, 0, models.PaymentMethodCash)
				require.NoError(t, s.SetMode(models.SplitModeEqual))
				return s
			},
			guest:         1,
			wantSettled:   "50",
			wantRemaining: "20",
		},
		{
			name: "by item then equal",
			setup: func(t *testing.T) *Session {
				s := newSession(t, abcCart(), 2)
				require.NoError(t, s.SetMode(models.SplitModeByItem))
				require.NoError(t, s.AssignItem(0, "A"))
				pay(t, s, 0, models.PaymentMethodVoucher)
				require.NoError(t, s.SetMode(models.SplitModeEqual))
				return s
			},
			guest:         1,
			wantSettled:   "50",
			wantRemaining: "20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setup(t)

			share, err := s.GuestTotal(tt.guest)
			require.NoError(t, err)
			due, err := s.AmountDue(tt.guest)
			require.NoError(t, err)
			view, err := s.View()
			require.NoError(t, err)

			settled := pay(t, s, tt.guest, models.PaymentMethodCash)

			assert.True(t, settled.Amount.Equal(d(tt.wantSettled)), "settled = %s", settled.Amount)
			assert.True(t, settled.Amount.Equal(calculator.RoundCents(share)), "settled %s, share %s", settled.Amount, share)
			assert.True(t, settled.Amount.Equal(due), "settled %s, due %s", settled.Amount, due)
			assert.True(t, settled.Amount.Equal(view.Guests[tt.guest].Owed), "settled %s, shown %s", settled.Amount, view.Guests[tt.guest].Owed)
			assert.True(t, s.Remaining().Equal(d(tt.wantRemaining)), "remaining = %s", s.Remaining())
		})
	}
}

func TestEqualResidualAbsorbedByLastGuest(t *testing.T) {
	s := newSession(t, models.CartSnapshot{Total: d("100")}, 7)
	for g := 0; g < 6; g++ {
		settled := pay(t, s, g, models.PaymentMethodCard)
		assert.True(t, settled.Amount.Equal(d("14.29")), "guest %d settled %s", g, settled.Amount)
	}

	due, err := s.AmountDue(6)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("14.26")), "due = %s", due)

	last := pay(t, s, 6, models.PaymentMethodCard)
	assert.True(t, last.Amount.Equal(due))
	assert.True(t, s.Remaining().IsZero())
}

func TestClosedSessionRejectsMutation(t *testing.T) {
	s := newSession(t, models.CartSnapshot{Total: d("10")}, 2)
	pay(t, s, 0, models.PaymentMethodCash)
	pay(t, s, 1, models.PaymentMethodCash)
	require.True(t, s.Closed())

	require.ErrorIs(t, s.SetMode(models.SplitModeCustom), ErrSessionClosed)
	require.ErrorIs(t, s.SetGuestCount(3), ErrSessionClosed)
	require.ErrorIs(t, s.SetCustomAmount(0, d("1")), ErrSessionClosed)
	require.ErrorIs(t, s.BeginPayment(0), ErrSessionClosed)

	// A repeated confirm after the final payment is still a replay.
	c, err := s.ConfirmPayment()
	require.NoError(t, err)
	assert.True(t, c.Replayed)

	s.Reset()
	assert.False(t, s.Closed())
	require.NoError(t, s.SetMode(models.SplitModeCustom))
}

func TestOverAllocatedCustomIsCapped(t *testing.T) {
	s := newSession(t, models.CartSnapshot{Total: d("100")}, 2)
	require.NoError(t, s.SetMode(models.SplitModeCustom))
	require.NoError(t, s.SetCustomAmount(0, d("70")))
	require.NoError(t, s.SetCustomAmount(1, d("70")))

	pay(t, s, 0, models.PaymentMethodCard)
	second := pay(t, s, 1, models.PaymentMethodCard)

	assert.True(t, second.Amount.Equal(d("30")), "second = %s", second.Amount)
	assert.True(t, s.Remaining().IsZero())
}

func TestRemainingNeverNegative(t *testing.T) {
	s := newSession(t, abcCart(), 4)
	modes := []models.SplitMode{models.SplitModeCustom, models.SplitModeByItem, models.SplitModeEqual, models.SplitModeCustom}
	for g := 0; g < 4; g++ {
		require.NoError(t, s.SetCustomAmount(g, d("45")))
	}
	require.NoError(t, s.AssignItem(1, "C"))
	require.NoError(t, s.AssignItem(2, "A"))

	for g, mode := range modes {
		require.NoError(t, s.SetMode(mode))
		pay(t, s, g, models.PaymentMethodCash)
		assert.False(t, s.Remaining().IsNegative())
	}
	assert.True(t, s.Closed())
	assert.True(t, s.Remaining().Equal(decimal.Zero))
}

func TestConcurrentOperationsAreAtomic(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, abcCart(), 8, WithSettlementFunc(rec.settle))
	require.NoError(t, s.SetMode(models.SplitModeByItem))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.AssignItem(g, []string{"A", "B", "C"}[i%3])
				_, _ = s.View()
			}
		}(g)
	}
	wg.Wait()

	for _, id := range []string{"A", "B", "C"} {
		_, ok := s.Owner(id)
		assert.True(t, ok)
	}
	c, err := s.Coverage()
	require.NoError(t, err)
	assert.True(t, c.Allocated.Equal(d("100")))
}
