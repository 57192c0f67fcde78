package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/onecard/internal/models"
)

// Names of the built-in rate tables.
const (
	TableCashback   = "cashback"
	TableDealMarkup = "deal_markup"
)

// Cashback constants, as fractions of the purchase amount.
var (
	CustomerSelfRate          = decimal.RequireFromString("0.025")
	VendorProfitRate          = decimal.RequireFromString("0.08")
	AdminFeeRate              = decimal.RequireFromString("0.02")
	RegisteredRecipientBonus  = decimal.RequireFromString("0.015")
	AdminPurchaseRewardFactor = decimal.RequireFromString("1.5")

	// DealMarkupRate is the markup added to a deal's wholesale price.
	DealMarkupRate = decimal.RequireFromString("0.10")
)

var one = decimal.NewFromInt(1)

// Rule holds the rates applied to the pool for one (role, mode) pair.
// An empty Mode matches every purchase mode for the role.
type Rule struct {
	Role models.Role
	Mode models.PurchaseMode

	CustomerRate decimal.Decimal
	VendorRate   decimal.Decimal
	AdminRate    decimal.Decimal

	// RegisteredBonusRate is added to CustomerRate when the purchase is
	// for another person whose number is registered.
	RegisteredBonusRate decimal.Decimal

	// CustomerMultiplier scales the customer rate. Zero means 1.
	CustomerMultiplier decimal.Decimal
}

func (r Rule) multiplier() decimal.Decimal {
	if r.CustomerMultiplier.IsZero() {
		return one
	}
	return r.CustomerMultiplier
}

func (r Rule) customerRate(mode models.PurchaseMode, recipientRegistered bool) decimal.Decimal {
	rate := r.CustomerRate
	if mode == models.ModeOther && recipientRegistered {
		rate = rate.Add(r.RegisteredBonusRate)
	}
	return rate.Mul(r.multiplier())
}

// maxShare is the largest fraction of the pool the rule can pay out.
func (r Rule) maxShare() decimal.Decimal {
	customer := r.CustomerRate.Add(r.RegisteredBonusRate).Mul(r.multiplier())
	return customer.Add(r.VendorRate).Add(r.AdminRate)
}

func (r Rule) validate() error {
	rates := []struct {
		name string
		rate decimal.Decimal
	}{
		{"customer", r.CustomerRate},
		{"vendor", r.VendorRate},
		{"admin", r.AdminRate},
		{"bonus", r.RegisteredBonusRate},
		{"multiplier", r.CustomerMultiplier},
	}
	for _, c := range rates {
		if c.rate.IsNegative() {
			return fmt.Errorf("%w: %s/%s has negative %s rate %s", ErrRateTableInvalid, r.Role, r.modeLabel(), c.name, c.rate)
		}
	}
	if !r.Role.Valid() {
		return fmt.Errorf("%w: rule role %q", ErrRateTableInvalid, r.Role)
	}
	if r.Mode != "" && !r.Mode.Valid() {
		return fmt.Errorf("%w: rule mode %q", ErrRateTableInvalid, r.Mode)
	}
	if share := r.maxShare(); share.GreaterThan(one) {
		return fmt.Errorf("%w: %s/%s pays out %s of the pool", ErrRateTableInvalid, r.Role, r.modeLabel(), share)
	}
	return nil
}

func (r Rule) modeLabel() string {
	if r.Mode == "" {
		return "*"
	}
	return string(r.Mode)
}

// RateTable maps (role, mode) to the rates applied to a purchase.
//
// The pool is amount × PoolRate. Cashback uses a pool rate of 1 so the
// rule rates are fractions of the purchase amount; deal markup uses the
// markup rate so the rule rates are shares of the markup.
type RateTable struct {
	Name     string
	PoolRate decimal.Decimal
	Rules    []Rule
}

// NewRateTable validates the rules and returns the table.
func NewRateTable(name string, poolRate decimal.Decimal, rules ...Rule) (*RateTable, error) {
	t := &RateTable{Name: name, PoolRate: poolRate, Rules: rules}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that no rule can pay out more than the purchase amount.
func (t *RateTable) Validate() error {
	if !t.PoolRate.IsPositive() || t.PoolRate.GreaterThan(one) {
		return fmt.Errorf("%w: %s pool rate %s must be in (0, 1]", ErrRateTableInvalid, t.Name, t.PoolRate)
	}
	if len(t.Rules) == 0 {
		return fmt.Errorf("%w: %s has no rules", ErrRateTableInvalid, t.Name)
	}
	seen := make(map[string]bool, len(t.Rules))
	for _, r := range t.Rules {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		key := string(r.Role) + "/" + r.modeLabel()
		if seen[key] {
			return fmt.Errorf("%w: %s has duplicate rule %s", ErrRateTableInvalid, t.Name, key)
		}
		seen[key] = true
	}
	return nil
}

// Lookup finds the rule for role and mode. An exact mode match wins
// over a wildcard rule.
func (t *RateTable) Lookup(role models.Role, mode models.PurchaseMode) (Rule, bool) {
	var wildcard *Rule
	for i := range t.Rules {
		r := &t.Rules[i]
		if r.Role != role {
			continue
		}
		if r.Mode == mode {
			return *r, true
		}
		if r.Mode == "" {
			wildcard = r
		}
	}
	if wildcard != nil {
		return *wildcard, true
	}
	return Rule{}, false
}

// DefaultCashbackTable returns the OneCard cashback rates.
func DefaultCashbackTable() *RateTable {
	return &RateTable{
		Name:     TableCashback,
		PoolRate: one,
		Rules: []Rule{
			{
				Role:         models.RoleVendor,
				CustomerRate: CustomerSelfRate,
				VendorRate:   VendorProfitRate,
				AdminRate:    AdminFeeRate,
			},
			{
				Role:         models.RoleCustomer,
				Mode:         models.ModeSelf,
				CustomerRate: CustomerSelfRate,
				AdminRate:    AdminFeeRate,
			},
			{
				Role:                models.RoleCustomer,
				Mode:                models.ModeOther,
				CustomerRate:        CustomerSelfRate,
				AdminRate:           AdminFeeRate,
				RegisteredBonusRate: RegisteredRecipientBonus,
			},
			{
				Role:               models.RoleAdmin,
				CustomerRate:       CustomerSelfRate,
				CustomerMultiplier: AdminPurchaseRewardFactor,
			},
		},
	}
}

// DefaultDealMarkupTable returns the profit sharing applied to a deal's
// 10% markup.
func DefaultDealMarkupTable() *RateTable {
	return &RateTable{
		Name:     TableDealMarkup,
		PoolRate: DealMarkupRate,
		Rules: []Rule{
			{
				Role:         models.RoleVendor,
				VendorRate:   decimal.RequireFromString("0.75"),
				CustomerRate: decimal.RequireFromString("0.125"),
				AdminRate:    decimal.RequireFromString("0.125"),
			},
			{
				Role:         models.RoleCustomer,
				Mode:         models.ModeSelf,
				CustomerRate: decimal.RequireFromString("0.50"),
				VendorRate:   decimal.RequireFromString("0.25"),
				AdminRate:    decimal.RequireFromString("0.25"),
			},
			{
				Role:         models.RoleCustomer,
				Mode:         models.ModeOther,
				CustomerRate: decimal.RequireFromString("0.50"),
				AdminRate:    decimal.RequireFromString("0.50"),
			},
			{
				Role:      models.RoleAdmin,
				AdminRate: one,
			},
		},
	}
}
