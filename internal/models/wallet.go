package models

import "github.com/shopspring/decimal"

// PlatformWalletID is the owner ID of the admin ledger.
const PlatformWalletID = "platform"

// Wallet is a OneCard balance.
type Wallet struct {
	// OwnerID is the user ID, or PlatformWalletID for the admin ledger.
	OwnerID string

	// Role of the owner. The admin ledger has RoleAdmin.
	Role Role

	// Balance is the accumulated cashback, profit or fee total.
	Balance decimal.Decimal

	// UpdatedAt is the Unix timestamp of the last credit.
	UpdatedAt int64
}
