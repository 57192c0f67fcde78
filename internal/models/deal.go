package models

import "github.com/shopspring/decimal"

// Deal is an airtime or data bundle listed by a vendor.
type Deal struct {
	// ID is the unique identifier for the deal (UUID format).
	ID string

	// VendorID is the vendor who listed the deal and shares in its markup.
	VendorID string

	// Network is the mobile operator (e.g. "Vodacom", "MTN").
	Network string

	// Title is the display name (e.g. "1GB monthly").
	Title string

	// WholesalePrice is what the platform pays the network.
	// The retail price adds the deal markup table's pool rate on top.
	WholesalePrice decimal.Decimal

	// Active deals are listed and purchasable.
	Active bool

	// CreatedAt is the Unix timestamp when the deal was listed.
	CreatedAt int64
}

// Price is the retail price for the given markup rate, rounded to cents.
func (d *Deal) Price(markupRate decimal.Decimal) decimal.Decimal {
	return d.WholesalePrice.Add(d.WholesalePrice.Mul(markupRate)).Round(2)
}
