package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tablesplit/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string, qty int) models.LineItem {
	return models.LineItem{ID: id, Description: id, UnitPrice: d(price), Quantity: qty}
}

// abcCart is items A=30, B=20, C=50 with total 100.
func abcCart() models.CartSnapshot {
	return models.CartSnapshot{
		Items: []models.LineItem{item("A", "30", 1), item("B", "10", 2), item("C", "50", 1)},
		Total: d("100"),
	}
}

func newSession(t *testing.T, snapshot models.CartSnapshot, guests int, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(snapshot, guests, opts...)
	require.NoError(t, err)
	return s
}

func requireTotal(t *testing.T, s *Session, guest int, want string) {
	t.Helper()
	got, err := s.GuestTotal(guest)
	require.NoError(t, err)
	assert.True(t, got.Equal(d(want)), "guest %d total = %s, want %s", guest, got, want)
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.CartSnapshot
		guests   int
	}{
		{"negative total", models.CartSnapshot{Total: d("-1")}, 2},
		{"one guest", abcCart(), 1},
		{"zero quantity", models.CartSnapshot{Items: []models.LineItem{item("A", "1", 0)}, Total: d("1")}, 2},
		{"negative price", models.CartSnapshot{Items: []models.LineItem{item("A", "-1", 1)}, Total: d("1")}, 2},
		{"duplicate id", models.CartSnapshot{Items: []models.LineItem{item("A", "1", 1), item("A", "2", 1)}, Total: d("3")}, 2},
		{"missing id", models.CartSnapshot{Items: []models.LineItem{item("", "1", 1)}, Total: d("1")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.snapshot, tt.guests)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestNewSession_ZeroPriceItem(t *testing.T) {
	cart := models.CartSnapshot{
		Items: []models.LineItem{item("A", "40", 1), item("water", "0", 2)},
		Total: d("40"),
	}
	s := newSession(t, cart, 2)

	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(1, "water"))
	requireTotal(t, s, 1, "0")
}

func TestNewSession_Defaults(t *testing.T) {
	s := newSession(t, abcCart(), 3, WithID("table-7"))

	assert.Equal(t, "table-7", s.ID())
	assert.Equal(t, models.SplitModeEqual, s.Mode())
	assert.Equal(t, 3, s.GuestCount())
	assert.Equal(t, Idle{}, s.Flow())
	assert.False(t, s.Closed())
	for g := 0; g < 3; g++ {
		status, err := s.Status(g)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusUnpaid, status)
	}
}

func TestNewSession_CopiesItems(t *testing.T) {
	cart := abcCart()
	s := newSession(t, cart, 2)
	cart.Items[0].UnitPrice = d("999")

	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(0, "A"))
	requireTotal(t, s, 0, "30")
}

func TestEqualScenario(t *testing.T) {
	s := newSession(t, models.CartSnapshot{Total: d("100")}, 4)
	for g := 0; g < 4; g++ {
		requireTotal(t, s, g, "25.00")
	}
}

func TestEqualConservation(t *testing.T) {
	for _, total := range []string{"1", "10.01", "99.99", "100", "257.13"} {
		for n := 2; n <= 9; n++ {
			s := newSession(t, models.CartSnapshot{Total: d(total)}, n)
			for g := 0; g < n; g++ {
				share, err := s.GuestTotal(g)
				require.NoError(t, err)
				drift := share.Mul(decimal.NewFromInt(int64(n))).Sub(d(total)).Abs()
				assert.True(t, drift.LessThanOrEqual(d("0.01")), "total=%s n=%d drift=%s", total, n, drift)
			}
		}
	}
}

func TestEqualShareFollowsGuestCount(t *testing.T) {
	s := newSession(t, models.CartSnapshot{Total: d("120")}, 4)
	requireTotal(t, s, 0, "30")

	require.NoError(t, s.SetGuestCount(6))
	requireTotal(t, s, 5, "20")

	require.NoError(t, s.SetGuestCount(3))
	requireTotal(t, s, 0, "40")
}

func TestSetGuestCount_BelowMinimumRejected(t *testing.T) {
	s := newSession(t, abcCart(), 3)

	err := s.SetGuestCount(1)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, 3, s.GuestCount())
	due, err := s.AmountDue(0)
	require.NoError(t, err)
	assert.True(t, due.Equal(d("33.33")), "due = %s", due)
}

func TestSetGuestCount_CannotDropPaidGuest(t *testing.T) {
	s := newSession(t, abcCart(), 4)
	pay(t, s, 3, models.PaymentMethodCash)
	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(2, "C"))

	err := s.SetGuestCount(2)
	require.ErrorIs(t, err, ErrCannotShrinkBelowSettled)

	assert.Equal(t, 4, s.GuestCount())
	owner, ok := s.Owner("C")
	require.True(t, ok)
	assert.Equal(t, 2, owner)
}

func TestSetGuestCount_ShrinkDropsGuestState(t *testing.T) {
	s := newSession(t, abcCart(), 4)
	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(3, "C"))
	require.NoError(t, s.AssignItem(1, "A"))
	require.NoError(t, s.SetCustomAmount(3, d("10")))
	require.NoError(t, s.BeginPayment(3))

	require.NoError(t, s.SetGuestCount(2))

	assert.Equal(t, 2, s.GuestCount())
	_, ok := s.Owner("C")
	assert.False(t, ok, "item held by a dropped guest becomes unassigned")
	owner, ok := s.Owner("A")
	require.True(t, ok)
	assert.Equal(t, 1, owner)
	assert.Equal(t, Idle{}, s.Flow())

	require.NoError(t, s.SetGuestCount(4))
	require.NoError(t, s.SetMode(models.SplitModeCustom))
	requireTotal(t, s, 3, "0")
}

func TestSetMode_PreservesAssignmentsAndCustom(t *testing.T) {
	s := newSession(t, abcCart(), 2)
	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(0, "A"))
	require.NoError(t, s.SetCustomAmount(0, d("70")))

	require.NoError(t, s.SetMode(models.SplitModeCustom))
	requireTotal(t, s, 0, "70")

	require.NoError(t, s.SetMode(models.SplitModeEqual))
	requireTotal(t, s, 0, "50")

	require.NoError(t, s.SetMode(models.SplitModeByItem))
	requireTotal(t, s, 0, "30")

	err := s.SetMode(models.SplitMode("percent"))
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, models.SplitModeByItem, s.Mode())
}

func TestCustomScenario(t *testing.T) {
	s := newSession(t, models.CartSnapshot{Total: d("100")}, 3)
	require.NoError(t, s.SetMode(models.SplitModeCustom))
	for g, amount := range []string{"40", "40", "20"} {
		require.NoError(t, s.SetCustomAmount(g, d(amount)))
	}

	assert.True(t, s.Remaining().Equal(d("100")))

	pay(t, s, 0, models.PaymentMethodCard)
	assert.True(t, s.Remaining().Equal(d("60")), "remaining = %s", s.Remaining())
}

func TestSetCustomAmount_Rejections(t *testing.T) {
	s := newSession(t, abcCart(), 2)

	require.ErrorIs(t, s.SetCustomAmount(0, d("-1")), ErrInvalidConfiguration)
	require.ErrorIs(t, s.SetCustomAmount(2, d("1")), ErrUnknownGuestIndex)
}

func TestGuestTotal_UnknownGuest(t *testing.T) {
	s := newSession(t, abcCart(), 2)

	_, err := s.GuestTotal(-1)
	require.ErrorIs(t, err, ErrUnknownGuestIndex)
	_, err = s.GuestTotal(2)
	require.ErrorIs(t, err, ErrUnknownGuestIndex)
}

func TestCoverageWarnings(t *testing.T) {
	s := newSession(t, abcCart(), 2)

	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(0, "A"))
	c, err := s.Coverage()
	require.NoError(t, err)
	assert.Equal(t, "under", string(c.Warning))
	assert.Equal(t, []string{"B", "C"}, c.Unassigned)

	require.NoError(t, s.SetMode(models.SplitModeCustom))
	require.NoError(t, s.SetCustomAmount(0, d("80")))
	require.NoError(t, s.SetCustomAmount(1, d("30")))
	c, err = s.Coverage()
	require.NoError(t, err)
	assert.Equal(t, "over", string(c.Warning))
	assert.True(t, c.Difference.Equal(d("-10")))
}

func TestReset(t *testing.T) {
	s := newSession(t, abcCart(), 3)
	require.NoError(t, s.SetGuestCount(5))
	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(0, "A"))
	pay(t, s, 0, models.PaymentMethodCash)
	require.NoError(t, s.BeginPayment(1))

	s.Reset()

	assert.Equal(t, models.SplitModeEqual, s.Mode())
	assert.Equal(t, 3, s.GuestCount())
	assert.Equal(t, Idle{}, s.Flow())
	assert.True(t, s.Remaining().Equal(d("100")))
	_, ok := s.Owner("A")
	assert.False(t, ok)
	_, paid, err := s.SettledAmount(0)
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestView(t *testing.T) {
	s := newSession(t, abcCart(), 2)
	require.NoError(t, s.SetMode(models.SplitModeByItem))
	require.NoError(t, s.AssignItem(0, "A"))
	require.NoError(t, s.AssignItem(0, "B"))
	require.NoError(t, s.AssignItem(1, "C"))
	require.NoError(t, s.BeginPayment(1))

	v, err := s.View()
	require.NoError(t, err)

	assert.Equal(t, models.SplitModeByItem, v.Mode)
	require.Len(t, v.Guests, 2)
	assert.Equal(t, []string{"A", "B"}, v.Guests[0].Items)
	assert.True(t, v.Guests[0].Owed.Equal(d("50")))
	assert.Equal(t, models.PaymentStatusUnpaid, v.Guests[0].Status)
	assert.Equal(t, models.PaymentStatusSelectingMethod, v.Guests[1].Status)
	assert.Equal(t, Selecting{Guest: 1}, v.Flow)
	assert.Equal(t, "exact", string(v.Coverage.Warning))
	assert.False(t, v.Closed)
}
