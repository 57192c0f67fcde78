package allocation

import (
	"errors"
	"testing"

	"github.com/mmynk/onecard/internal/models"
)

func TestDealMarkupTable(t *testing.T) {
	table := DefaultDealMarkupTable()
	if err := table.Validate(); err != nil {
		t.Fatalf("default deal markup table invalid: %v", err)
	}

	tests := []struct {
		name string
		role models.Role
		mode models.PurchaseMode
		want Result
	}{
		{
			name: "vendor purchase splits 75/12.5/12.5",
			role: models.RoleVendor,
			mode: models.ModeSelf,
			want: Result{CustomerReward: d("1.25"), VendorProfit: d("7.50"), AdminFee: d("1.25"), TotalAmount: d("100")},
		},
		{
			name: "customer self purchase splits 50/25/25",
			role: models.RoleCustomer,
			mode: models.ModeSelf,
			want: Result{CustomerReward: d("5.00"), VendorProfit: d("2.50"), AdminFee: d("2.50"), TotalAmount: d("100")},
		},
		{
			name: "third party purchase splits 50/50",
			role: models.RoleCustomer,
			mode: models.ModeOther,
			want: Result{CustomerReward: d("5.00"), VendorProfit: d("0"), AdminFee: d("5.00"), TotalAmount: d("100")},
		},
		{
			name: "admin purchase keeps the markup",
			role: models.RoleAdmin,
			mode: models.ModeSelf,
			want: Result{CustomerReward: d("0"), VendorProfit: d("0"), AdminFee: d("10.00"), TotalAmount: d("100")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Calculate(Input{Amount: d("100"), Role: tt.role, Mode: tt.mode})
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			assertResult(t, got, tt.want)
		})
	}
}

func TestRateTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   *RateTable
		wantErr bool
	}{
		{
			name:  "default cashback",
			table: DefaultCashbackTable(),
		},
		{
			name:  "default deal markup",
			table: DefaultDealMarkupTable(),
		},
		{
			name: "pool rate above one",
			table: &RateTable{Name: "bad", PoolRate: d("1.5"), Rules: []Rule{
				{Role: models.RoleCustomer, CustomerRate: d("0.1")},
			}},
			wantErr: true,
		},
		{
			name:    "no rules",
			table:   &RateTable{Name: "empty", PoolRate: one},
			wantErr: true,
		},
		{
			name: "negative rate",
			table: &RateTable{Name: "neg", PoolRate: one, Rules: []Rule{
				{Role: models.RoleCustomer, CustomerRate: d("-0.01")},
			}},
			wantErr: true,
		},
		{
			name: "rates exceed the pool",
			table: &RateTable{Name: "greedy", PoolRate: one, Rules: []Rule{
				{Role: models.RoleVendor, CustomerRate: d("0.5"), VendorRate: d("0.4"), AdminRate: d("0.2")},
			}},
			wantErr: true,
		},
		{
			name: "multiplied bonus exceeds the pool",
			table: &RateTable{Name: "bonus", PoolRate: one, Rules: []Rule{
				{Role: models.RoleCustomer, CustomerRate: d("0.4"), RegisteredBonusRate: d("0.3"), CustomerMultiplier: d("1.5")},
			}},
			wantErr: true,
		},
		{
			name: "duplicate rule",
			table: &RateTable{Name: "dup", PoolRate: one, Rules: []Rule{
				{Role: models.RoleAdmin, AdminRate: d("0.1")},
				{Role: models.RoleAdmin, AdminRate: d("0.2")},
			}},
			wantErr: true,
		},
		{
			name: "unknown role",
			table: &RateTable{Name: "role", PoolRate: one, Rules: []Rule{
				{Role: "reseller", AdminRate: d("0.1")},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrRateTableInvalid) {
				t.Errorf("error %v does not wrap ErrRateTableInvalid", err)
			}
		})
	}
}

func TestLookup_ExactModeWinsOverWildcard(t *testing.T) {
	table, err := NewRateTable("mixed", one,
		Rule{Role: models.RoleCustomer, CustomerRate: d("0.01")},
		Rule{Role: models.RoleCustomer, Mode: models.ModeOther, CustomerRate: d("0.05")},
	)
	if err != nil {
		t.Fatalf("NewRateTable() error = %v", err)
	}

	rule, ok := table.Lookup(models.RoleCustomer, models.ModeOther)
	if !ok || !rule.CustomerRate.Equal(d("0.05")) {
		t.Errorf("Lookup(other) = %+v, %v; want exact rule", rule, ok)
	}
	rule, ok = table.Lookup(models.RoleCustomer, models.ModeSelf)
	if !ok || !rule.CustomerRate.Equal(d("0.01")) {
		t.Errorf("Lookup(self) = %+v, %v; want wildcard rule", rule, ok)
	}
	if _, ok := table.Lookup(models.RoleVendor, models.ModeSelf); ok {
		t.Error("Lookup(vendor) should miss")
	}
}
