// Package calculator holds the pure allocation arithmetic behind a split check.
//
// Every function here is side-effect free: callers pass the full input and get
// a fresh answer back, so a guest's share never depends on when it was last
// computed.
package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tablesplit/internal/models"
)

const (
	// centPlaces is the number of decimal places captured money is rounded to.
	centPlaces = 2

	// sharePlaces is the precision of an unrounded Equal share.
	sharePlaces = 16
)

// Cent is the smallest representable amount.
var Cent = decimal.New(1, -centPlaces)

// Input is everything an allocation strategy may look at.
type Input struct {
	Total      decimal.Decimal
	Items      []models.LineItem
	GuestCount int

	// Assignments maps item ID to the guest it is assigned to (ByItem).
	Assignments map[string]int

	// Custom maps guest index to the amount the operator entered (Custom).
	Custom map[int]decimal.Decimal
}

// GuestTotal computes how much guest owes under mode.
func GuestTotal(mode models.SplitMode, in Input, guest int) (decimal.Decimal, error) {
	if in.GuestCount < 1 {
		return decimal.Zero, fmt.Errorf("guest count must be positive, got %d", in.GuestCount)
	}
	if guest < 0 || guest >= in.GuestCount {
		return decimal.Zero, fmt.Errorf("guest %d out of range [0,%d)", guest, in.GuestCount)
	}

	switch mode {
	case models.SplitModeEqual:
		return EqualShare(in.Total, in.GuestCount), nil
	case models.SplitModeByItem:
		return ItemShare(in.Items, in.Assignments, guest), nil
	case models.SplitModeCustom:
		return in.Custom[guest], nil
	default:
		return decimal.Zero, fmt.Errorf("unknown split mode %q", mode)
	}
}

// Totals computes every guest's share under mode, indexed by guest.
func Totals(mode models.SplitMode, in Input) ([]decimal.Decimal, error) {
	totals := make([]decimal.Decimal, in.GuestCount)
	for g := range totals {
		amount, err := GuestTotal(mode, in, g)
		if err != nil {
			return nil, err
		}
		totals[g] = amount
	}
	return totals, nil
}

// EqualShare is total / guestCount, unrounded. Money is rounded to the cent
// only when it is captured; see RoundCents.
func EqualShare(total decimal.Decimal, guestCount int) decimal.Decimal {
	return total.DivRound(decimal.NewFromInt(int64(guestCount)), sharePlaces)
}

// RoundCents rounds amount half away from zero to the cent.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(centPlaces)
}

// WithinRoundingResidual reports whether remaining differs from due by no
// more than the cents lost rounding guestCount equal shares.
func WithinRoundingResidual(due, remaining decimal.Decimal, guestCount int) bool {
	if guestCount < 1 {
		return false
	}
	limit := Cent.Mul(decimal.NewFromInt(int64(guestCount - 1)))
	return remaining.Sub(due).Abs().LessThanOrEqual(limit)
}

// ItemShare sums price × quantity of every item assigned to guest.
// Unassigned items contribute to nobody.
func ItemShare(items []models.LineItem, assignments map[string]int, guest int) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if owner, ok := assignments[item.ID]; ok && owner == guest {
			sum = sum.Add(item.LineTotal())
		}
	}
	return sum
}

// AssignedItems returns the IDs of items assigned to guest, in snapshot order.
func AssignedItems(items []models.LineItem, assignments map[string]int, guest int) []string {
	var ids []string
	for _, item := range items {
		if owner, ok := assignments[item.ID]; ok && owner == guest {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// UnassignedItems returns the IDs of items no guest has claimed, sorted.
func UnassignedItems(items []models.LineItem, assignments map[string]int) []string {
	var ids []string
	for _, item := range items {
		if _, ok := assignments[item.ID]; !ok {
			ids = append(ids, item.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
