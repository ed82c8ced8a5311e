// Package models defines the core domain models for tablesplit.
//
// # Models
//
//   - LineItem: one line of a finalized order (price, quantity, modifiers)
//   - CartSnapshot: the immutable items and authoritative total handed to checkout
//   - Settlement: one guest's confirmed payment, as recorded in the ledger
//   - Operator: a POS staff account allowed to run checkout
//
// # Design Principles
//
// 1. **Snapshots are immutable**: the engine never re-derives the total from items
// 2. **Money is decimal**: amounts use shopspring/decimal, never float64
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
package models
