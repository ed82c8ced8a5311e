package models

import "github.com/shopspring/decimal"

// LineItem represents a single line of a finalized order.
// Line items are owned by the cart snapshot and never change once a split starts.
type LineItem struct {
	// ID is the stable identifier of the line, unique within a snapshot.
	ID string

	// Description is the menu name of the item (e.g., "Margherita", "House Red").
	Description string

	// UnitPrice is the price of one unit.
	UnitPrice decimal.Decimal

	// Quantity is the number of units ordered.
	Quantity int

	// Modifiers are optional free-text adjustments ("no onions", "extra shot").
	Modifiers []string
}

// LineTotal returns UnitPrice × Quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartSnapshot is the finalized order supplied by the POS order module.
// Total is authoritative: it may differ from the sum of line totals
// (service charge, discounts) and is never recomputed from Items.
type CartSnapshot struct {
	Items []LineItem
	Total decimal.Decimal
}

// Item looks up a line item by ID.
func (c CartSnapshot) Item(id string) (LineItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}
