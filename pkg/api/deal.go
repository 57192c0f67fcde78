package api

import "github.com/shopspring/decimal"

type Deal struct {
	ID             string          `json:"id"`
	VendorID       string          `json:"vendorId"`
	Network        string          `json:"network"`
	Title          string          `json:"title"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	Price          decimal.Decimal `json:"price"`
	Active         bool            `json:"active"`
	CreatedAt      int64           `json:"createdAt"`
}

type CreateDealRequest struct {
	Network        string          `json:"network"`
	Title          string          `json:"title,omitempty"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`

	// VendorID lets an admin list a deal on a vendor's behalf.
	VendorID string `json:"vendorId,omitempty"`
}

type CreateDealResponse struct {
	Deal *Deal `json:"deal"`
}

type ListDealsRequest struct {
	Network         string `json:"network,omitempty"`
	IncludeInactive bool   `json:"includeInactive,omitempty"`
}

type ListDealsResponse struct {
	Deals []*Deal `json:"deals"`
}

type PurchaseDealRequest struct {
	DealID              string `json:"dealId"`
	Reference           string `json:"reference,omitempty"`
	Mode                string `json:"mode"`
	RecipientMSISDN     string `json:"recipientMsisdn,omitempty"`
	RecipientRegistered bool   `json:"recipientRegistered"`
}

func (x *PurchaseDealRequest) GetReference() string {
	if x != nil {
		return x.Reference
	}
	return ""
}

type PurchaseDealResponse struct {
	Deal       *Deal       `json:"deal"`
	Allocation *Allocation `json:"allocation"`
	Created    bool        `json:"created"`
}
