// Package api defines the wire messages and Connect bindings for the
// tablesplit checkout and operator services.
//
// The service contract lives in proto/tablesplit/v1. The structs here mirror
// those messages field for field under their proto JSON names and are carried
// by a JSON codec, so protojson clients generated from the .proto files talk
// to the server unchanged. Money fields are decimal strings ("12.50") so
// amounts survive the wire exactly; int64 timestamps are quoted the way
// protojson writes them.
package api

import "github.com/shopspring/decimal"

// LineItem is one line of the finalized order.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Modifiers   []string        `json:"modifiers,omitempty"`
}

// Split is the full state of a split session.
type Split struct {
	SessionID string          `json:"session_id"`
	Mode      string          `json:"mode"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
	Guests    []Guest         `json:"guests"`
	Payment   PaymentFlow     `json:"payment"`
	Coverage  Coverage        `json:"coverage"`
	Closed    bool            `json:"closed"`
}

// Guest is one guest's line in a Split.
type Guest struct {
	Index        int              `json:"index"`
	Status       string           `json:"status"`
	Owed         decimal.Decimal  `json:"owed"`
	Settled      *decimal.Decimal `json:"settled,omitempty"`
	Method       string           `json:"method,omitempty"`
	Items        []string         `json:"items,omitempty"`
	CustomAmount decimal.Decimal  `json:"custom_amount"`
}

// PaymentFlow is the session's payment pointer.
type PaymentFlow struct {
	// State is "idle", "selecting" or "method_chosen".
	State      string `json:"state"`
	GuestIndex *int   `json:"guest_index,omitempty"`
	Method     string `json:"method,omitempty"`
}

// Coverage tells the operator whether the shares add up to the total.
type Coverage struct {
	Warning    string          `json:"warning"`
	Allocated  decimal.Decimal `json:"allocated"`
	Difference decimal.Decimal `json:"difference"`
	Unassigned []string        `json:"unassigned,omitempty"`
}

// Settlement is one confirmed guest payment.
type Settlement struct {
	ID         string          `json:"id,omitempty"`
	SessionID  string          `json:"session_id"`
	GuestIndex int             `json:"guest_index"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Mode       string          `json:"mode"`
	Sequence   int             `json:"sequence"`
	OperatorID string          `json:"operator_id,omitempty"`
	CreatedAt  int64           `json:"created_at,string"`
}

type StartSplitRequest struct {
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	GuestCount int             `json:"guest_count"`
}

type GetSplitRequest struct {
	SessionID string `json:"session_id"`
}

type SetGuestCountRequest struct {
	SessionID  string `json:"session_id"`
	GuestCount int    `json:"guest_count"`
}

type SetModeRequest struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

type AssignItemRequest struct {
	SessionID  string `json:"session_id"`
	GuestIndex int    `json:"guest_index"`
	ItemID     string `json:"item_id"`
}

type UnassignItemRequest struct {
	SessionID  string `json:"session_id"`
	GuestIndex int    `json:"guest_index"`
	ItemID     string `json:"item_id"`
}

type SetCustomAmountRequest struct {
	SessionID  string          `json:"session_id"`
	GuestIndex int             `json:"guest_index"`
	Amount     decimal.Decimal `json:"amount"`
}

type ResetSplitRequest struct {
	SessionID string `json:"session_id"`
}

type BeginPaymentRequest struct {
	SessionID  string `json:"session_id"`
	GuestIndex int    `json:"guest_index"`
}

type ChooseMethodRequest struct {
	SessionID string `json:"session_id"`
	Method    string `json:"method"`
}

type CancelPaymentRequest struct {
	SessionID string `json:"session_id"`
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id"`
}

type CancelSplitRequest struct {
	SessionID string `json:"session_id"`
}

type ListSettlementsRequest struct {
	SessionID string `json:"session_id"`
}

// SplitResponse is returned by every call that reads or mutates a session.
type SplitResponse struct {
	Split *Split `json:"split"`
}

type ConfirmPaymentResponse struct {
	Settlement Settlement `json:"settlement"`

	// Replayed is true when the call repeated an earlier confirmation.
	Replayed bool   `json:"replayed"`
	Split    *Split `json:"split"`
}

type CancelSplitResponse struct{}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

// Operator is a POS staff account.
type Operator struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at,string"`
}

type RegisterOperatorRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	PIN         string `json:"pin"`
}

type LoginRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type AuthResponse struct {
	Operator Operator `json:"operator"`
	Token    string   `json:"token"`
}
