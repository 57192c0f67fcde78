// Package allocation computes how a purchase's cashback, vendor profit and
// platform fee are split, and persists the split to OneCard wallets.
//
// The calculation is a pure function of the purchase and a RateTable:
//
//	pool      = amount × table.PoolRate
//	component = round(pool × rule rate, 2)
//
// Components are rounded independently, so they need not add up to the
// purchase amount, but they never exceed it.
package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/onecard/internal/models"
)

// Input describes one purchase event.
type Input struct {
	Amount              decimal.Decimal
	Role                models.Role
	Mode                models.PurchaseMode
	RecipientRegistered bool
}

// Result is the computed split for one purchase.
type Result struct {
	CustomerReward decimal.Decimal
	VendorProfit   decimal.Decimal
	AdminFee       decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Allocated is the sum of the three components.
func (r Result) Allocated() decimal.Decimal {
	return r.CustomerReward.Add(r.VendorProfit).Add(r.AdminFee)
}

// Calculate splits a purchase using the default cashback table.
func Calculate(amount decimal.Decimal, role models.Role, mode models.PurchaseMode, recipientRegistered bool) (Result, error) {
	return DefaultCashbackTable().Calculate(Input{
		Amount:              amount,
		Role:                role,
		Mode:                mode,
		RecipientRegistered: recipientRegistered,
	})
}

// Calculate splits in according to the table's rule for its role and mode.
func (t *RateTable) Calculate(in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	rule, ok := t.Lookup(in.Role, in.Mode)
	if !ok {
		return Result{}, &ValidationError{Field: "role", Value: string(in.Role) + "/" + string(in.Mode), Err: ErrNoRule}
	}

	pool := in.Amount.Mul(t.PoolRate)
	res := Result{
		CustomerReward: roundCents(pool.Mul(rule.customerRate(in.Mode, in.RecipientRegistered))),
		VendorProfit:   roundCents(pool.Mul(rule.VendorRate)),
		AdminFee:       roundCents(pool.Mul(rule.AdminRate)),
		TotalAmount:    in.Amount,
	}

	if res.Allocated().GreaterThan(res.TotalAmount) {
		return Result{}, ErrAllocationExceedsTotal
	}
	return res, nil
}

func validateInput(in Input) error {
	if in.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Value: in.Amount.String(), Err: ErrInvalidAmount}
	}
	if !in.Role.Valid() {
		return &ValidationError{Field: "role", Value: string(in.Role), Err: ErrUnknownRole}
	}
	if !in.Mode.Valid() {
		return &ValidationError{Field: "mode", Value: string(in.Mode), Err: ErrUnknownMode}
	}
	return nil
}

// roundCents rounds half away from zero, which for non-negative amounts
// is the same as ×100, round half up, ÷100.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
