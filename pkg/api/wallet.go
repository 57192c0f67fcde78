package api

import "github.com/shopspring/decimal"

type Wallet struct {
	OwnerID   string          `json:"ownerId"`
	Role      string          `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt int64           `json:"updatedAt,omitempty"`
}

// GetWalletRequest reads the caller's wallet. Admins may set OwnerID to
// read any wallet, including "platform".
type GetWalletRequest struct {
	OwnerID string `json:"ownerId,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type GetWalletResponse struct {
	Wallet            *Wallet       `json:"wallet"`
	RecentAllocations []*Allocation `json:"recentAllocations"`
}
