package models

import "github.com/shopspring/decimal"

// PurchaseMode distinguishes buying for yourself from buying for someone else.
type PurchaseMode string

const (
	ModeSelf  PurchaseMode = "self"
	ModeOther PurchaseMode = "other"
)

// Valid reports whether m is a known purchase mode.
func (m PurchaseMode) Valid() bool {
	return m == ModeSelf || m == ModeOther
}

// Allocation is a persisted split of one purchase.
type Allocation struct {
	// ID is the unique identifier (UUID format).
	ID string

	// Reference is the caller-supplied purchase reference. Unique: a
	// repeated reference never credits wallets twice.
	Reference string

	// Table names the rate table used ("cashback" or "deal_markup").
	Table string

	// PurchaserID is the user that paid.
	PurchaserID string
	Role        Role
	Mode        PurchaseMode

	// RecipientMSISDN is set when Mode is ModeOther.
	RecipientMSISDN     string
	RecipientRegistered bool

	// CustomerID receives CustomerReward. Empty when nobody registered
	// benefits, in which case the reward is recorded but not credited.
	CustomerID string

	// VendorID receives VendorProfit. Empty when the profit is zero.
	VendorID string

	// DealID is set for deal purchases.
	DealID string

	Amount         decimal.Decimal
	CustomerReward decimal.Decimal
	VendorProfit   decimal.Decimal
	AdminFee       decimal.Decimal

	// CreatedAt is the Unix timestamp when the allocation was recorded.
	CreatedAt int64
}
