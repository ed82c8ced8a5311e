package models

// SplitMode selects the strategy used to compute each guest's share.
type SplitMode string

const (
	SplitModeEqual  SplitMode = "equal"
	SplitModeByItem SplitMode = "by_item"
	SplitModeCustom SplitMode = "custom"
)

// Valid reports whether m is a known split mode.
func (m SplitMode) Valid() bool {
	switch m {
	case SplitModeEqual, SplitModeByItem, SplitModeCustom:
		return true
	}
	return false
}

// PaymentStatus is a guest's position in the payment flow.
type PaymentStatus string

const (
	PaymentStatusUnpaid          PaymentStatus = "unpaid"
	PaymentStatusSelectingMethod PaymentStatus = "selecting_method"
	PaymentStatusPaid            PaymentStatus = "paid"
)

// PaymentMethod is how a guest settled their share.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodVoucher PaymentMethod = "voucher"
	PaymentMethodMobile  PaymentMethod = "mobile"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodVoucher, PaymentMethodMobile:
		return true
	}
	return false
}
