package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tablesplit/internal/models"
)

// CoverageWarning describes how the active allocation relates to the total.
type CoverageWarning string

const (
	CoverageExact CoverageWarning = "exact"
	CoverageUnder CoverageWarning = "under"
	CoverageOver  CoverageWarning = "over"
)

// Coverage reports whether the guests' shares add up to the check total.
// A warning never blocks settlement; it is surfaced to the operator.
type Coverage struct {
	Mode      models.SplitMode
	Total     decimal.Decimal
	Allocated decimal.Decimal

	// Difference is Total - Allocated. Positive means money is left uncovered.
	Difference decimal.Decimal

	// Unassigned lists item IDs with no owner (ByItem only).
	Unassigned []string

	Warning CoverageWarning
}

// CheckCoverage sums the shares under mode and compares them with the total.
//
// The allocated sum is rounded to the cent. Equal mode is always reported
// exact: its rounding residual is charged to the last guest to pay.
func CheckCoverage(mode models.SplitMode, in Input) (Coverage, error) {
	totals, err := Totals(mode, in)
	if err != nil {
		return Coverage{}, err
	}

	allocated := RoundCents(decimal.Sum(decimal.Zero, totals...))
	c := Coverage{
		Mode:       mode,
		Total:      in.Total,
		Allocated:  allocated,
		Difference: in.Total.Sub(allocated),
		Warning:    CoverageExact,
	}
	if mode == models.SplitModeByItem {
		c.Unassigned = UnassignedItems(in.Items, in.Assignments)
	}
	if mode == models.SplitModeEqual {
		return c, nil
	}

	switch c.Difference.Sign() {
	case 1:
		c.Warning = CoverageUnder
	case -1:
		c.Warning = CoverageOver
	}
	return c, nil
}

// Remaining is total minus everything already settled, floored at zero.
func Remaining(total decimal.Decimal, settled []decimal.Decimal) decimal.Decimal {
	rest := total.Sub(decimal.Sum(decimal.Zero, settled...))
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// CapAtRemaining limits a settlement amount so the settled sum never exceeds total.
func CapAtRemaining(amount, remaining decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(remaining) {
		return remaining
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
