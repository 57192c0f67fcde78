package api

import "github.com/shopspring/decimal"

// Split is the computed allocation of one purchase.
type Split struct {
	CustomerReward decimal.Decimal `json:"customerReward"`
	VendorProfit   decimal.Decimal `json:"vendorProfit"`
	AdminFee       decimal.Decimal `json:"adminFee"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// Allocation is a persisted split.
type Allocation struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	Table           string          `json:"table"`
	PurchaserID     string          `json:"purchaserId"`
	Role            string          `json:"role"`
	Mode            string          `json:"mode"`
	RecipientMSISDN string          `json:"recipientMsisdn,omitempty"`
	CustomerID      string          `json:"customerId,omitempty"`
	VendorID        string          `json:"vendorId,omitempty"`
	DealID          string          `json:"dealId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	CustomerReward  decimal.Decimal `json:"customerReward"`
	VendorProfit    decimal.Decimal `json:"vendorProfit"`
	AdminFee        decimal.Decimal `json:"adminFee"`
	CreatedAt       int64           `json:"createdAt"`
}

// CalculateRequest previews a split. Role defaults to the caller's role.
type CalculateRequest struct {
	Amount              decimal.Decimal `json:"amount"`
	Role                string          `json:"role,omitempty"`
	Mode                string          `json:"mode"`
	RecipientRegistered bool            `json:"recipientRegistered"`

	// Table is "cashback" (default) or "deal_markup".
	Table string `json:"table,omitempty"`
}

type CalculateResponse struct {
	Split *Split `json:"split"`
}

// AllocateRequest records an airtime or data purchase made by the caller.
type AllocateRequest struct {
	Reference           string          `json:"reference,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Mode                string          `json:"mode"`
	RecipientMSISDN     string          `json:"recipientMsisdn,omitempty"`
	RecipientRegistered bool            `json:"recipientRegistered"`

	// CustomerID names the customer rewarded for a vendor or admin sale.
	CustomerID string `json:"customerId,omitempty"`

	// VendorID credits a vendor for a customer purchase made through them.
	VendorID string `json:"vendorId,omitempty"`
}

func (x *AllocateRequest) GetReference() string {
	if x != nil {
		return x.Reference
	}
	return ""
}

type AllocateResponse struct {
	Allocation *Allocation `json:"allocation"`

	// Created is false when the reference had already been allocated.
	Created bool `json:"created"`
}
