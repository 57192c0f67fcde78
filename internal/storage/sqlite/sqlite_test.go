package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "onecard-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser and lookups", func(t *testing.T) {
		user := models.NewUser("Thandi@Example.com", "Thandi", "hash", models.RoleVendor)
		user.Phone = "27821234567"
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, "thandi@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != user.ID {
			t.Fatalf("GetUserByEmail returned %+v, want ID %s", byEmail, user.ID)
		}
		if byEmail.Role != models.RoleVendor {
			t.Errorf("Role = %s, want vendor", byEmail.Role)
		}
		if byEmail.Phone != "27821234567" {
			t.Errorf("Phone = %s, want 27821234567", byEmail.Phone)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil || byID == nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		first := models.NewUser("dup@example.com", "One", "hash", models.RoleCustomer)
		if err := store.CreateUser(ctx, first); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		second := models.NewUser("dup@example.com", "Two", "hash", models.RoleCustomer)
		if err := store.CreateUser(ctx, second); err == nil {
			t.Error("Expected error for duplicate email")
		}
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil user, got %+v", user)
		}
	})

	t.Run("RecordAllocation credits wallets once", func(t *testing.T) {
		a := &models.Allocation{
			Reference:      "purchase-1",
			Table:          "cashback",
			PurchaserID:    "vendor-1",
			Role:           models.RoleVendor,
			Mode:           models.ModeSelf,
			CustomerID:     "customer-1",
			VendorID:       "vendor-1",
			Amount:         dec("200"),
			CustomerReward: dec("5.00"),
			VendorProfit:   dec("16.00"),
			AdminFee:       dec("4.00"),
		}

		created, err := store.RecordAllocation(ctx, a)
		if err != nil {
			t.Fatalf("RecordAllocation failed: %v", err)
		}
		if !created {
			t.Fatal("Expected first RecordAllocation to create")
		}
		if a.ID == "" || a.CreatedAt == 0 {
			t.Error("Expected ID and CreatedAt to be set")
		}

		replay := *a
		replay.ID, replay.CreatedAt = "", 0
		replay.CustomerReward, replay.VendorProfit, replay.AdminFee = dec("99"), dec("99"), dec("99")
		created, err = store.RecordAllocation(ctx, &replay)
		if err != nil {
			t.Fatalf("RecordAllocation replay failed: %v", err)
		}
		if created {
			t.Error("Expected replay not to create")
		}
		if replay.ID != a.ID || !replay.CustomerReward.Equal(dec("5")) {
			t.Errorf("Replay should load stored allocation, got ID=%s reward=%s", replay.ID, replay.CustomerReward)
		}

		changed := *a
		changed.ID, changed.CreatedAt = "", 0
		changed.Amount = dec("999")
		_, err = store.RecordAllocation(ctx, &changed)
		if !errors.Is(err, storage.ErrReferenceConflict) {
			t.Errorf("changed amount err = %v, want ErrReferenceConflict", err)
		}

		wants := map[string]string{
			"customer-1":            "5",
			"vendor-1":              "16",
			models.PlatformWalletID: "4",
		}
		for owner, want := range wants {
			w, err := store.GetWallet(ctx, owner)
			if err != nil {
				t.Fatalf("GetWallet(%s) failed: %v", owner, err)
			}
			if !w.Balance.Equal(dec(want)) {
				t.Errorf("%s balance = %s, want %s", owner, w.Balance, want)
			}
		}
	})

	t.Run("unknown wallet has zero balance", func(t *testing.T) {
		w, err := store.GetWallet(ctx, "ghost")
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if !w.Balance.IsZero() {
			t.Errorf("balance = %s, want 0", w.Balance)
		}
	})

	t.Run("reward without customer is recorded but not credited", func(t *testing.T) {
		a := &models.Allocation{
			Reference:      "purchase-2",
			Table:          "cashback",
			PurchaserID:    "admin-1",
			Role:           models.RoleAdmin,
			Mode:           models.ModeOther,
			Amount:         dec("50"),
			CustomerReward: dec("1.88"),
			VendorProfit:   decimal.Zero,
			AdminFee:       decimal.Zero,
		}
		if _, err := store.RecordAllocation(ctx, a); err != nil {
			t.Fatalf("RecordAllocation failed: %v", err)
		}
		got, err := store.GetAllocationByReference(ctx, "admin-1", "purchase-2")
		if err != nil {
			t.Fatalf("GetAllocationByReference failed: %v", err)
		}
		if !got.CustomerReward.Equal(dec("1.88")) {
			t.Errorf("CustomerReward = %s, want 1.88", got.CustomerReward)
		}
		platform, _ := store.GetWallet(ctx, models.PlatformWalletID)
		if !platform.Balance.Equal(dec("4")) {
			t.Errorf("platform balance = %s, want unchanged 4", platform.Balance)
		}
	})

	t.Run("GetAllocationByReference wraps ErrNotFound", func(t *testing.T) {
		_, err := store.GetAllocationByReference(ctx, "vendor-1", "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		_, err = store.GetAllocationByReference(ctx, "customer-1", "purchase-1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("other purchaser err = %v, want ErrNotFound", err)
		}
	})

	t.Run("references are scoped to the purchaser", func(t *testing.T) {
		a := &models.Allocation{
			Reference:      "purchase-1",
			Table:          "cashback",
			PurchaserID:    "customer-2",
			Role:           models.RoleCustomer,
			Mode:           models.ModeSelf,
			CustomerID:     "customer-2",
			Amount:         dec("5"),
			CustomerReward: dec("0.05"),
			VendorProfit:   decimal.Zero,
			AdminFee:       decimal.Zero,
		}
		created, err := store.RecordAllocation(ctx, a)
		if err != nil {
			t.Fatalf("RecordAllocation failed: %v", err)
		}
		if !created {
			t.Fatal("Expected a new allocation for a different purchaser")
		}
		if a.PurchaserID != "customer-2" || !a.Amount.Equal(dec("5")) {
			t.Errorf("got purchaser=%s amount=%s, want own purchase", a.PurchaserID, a.Amount)
		}
		w, _ := store.GetWallet(ctx, "customer-2")
		if !w.Balance.Equal(dec("0.05")) {
			t.Errorf("customer-2 balance = %s, want 0.05", w.Balance)
		}
	})

	t.Run("ListAllocationsByUser matches any party", func(t *testing.T) {
		for _, id := range []string{"vendor-1", "customer-1"} {
			list, err := store.ListAllocationsByUser(ctx, id, 10)
			if err != nil {
				t.Fatalf("ListAllocationsByUser failed: %v", err)
			}
			if len(list) != 1 || list[0].Reference != "purchase-1" {
				t.Errorf("%s: got %d allocations, want purchase-1", id, len(list))
			}
		}
	})
}

func TestDeals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	deals := []*models.Deal{
		{VendorID: "v1", Network: "Vodacom", Title: "1GB", WholesalePrice: dec("99"), Active: true, CreatedAt: 1},
		{VendorID: "v1", Network: "MTN", WholesalePrice: dec("49.50"), Active: true, CreatedAt: 2},
		{VendorID: "v2", Network: "Vodacom", Title: "Old", WholesalePrice: dec("10"), Active: false, CreatedAt: 3},
	}
	for _, d := range deals {
		if err := store.CreateDeal(ctx, d); err != nil {
			t.Fatalf("CreateDeal failed: %v", err)
		}
	}

	if deals[1].Title != "MTN bundle" {
		t.Errorf("generated title = %q, want %q", deals[1].Title, "MTN bundle")
	}

	got, err := store.GetDeal(ctx, deals[0].ID)
	if err != nil {
		t.Fatalf("GetDeal failed: %v", err)
	}
	if !got.WholesalePrice.Equal(dec("99")) || !got.Active {
		t.Errorf("GetDeal = %+v", got)
	}

	active, err := store.ListDeals(ctx, "Vodacom", true)
	if err != nil {
		t.Fatalf("ListDeals failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != deals[0].ID {
		t.Errorf("ListDeals(Vodacom, active) = %d deals, want 1", len(active))
	}

	all, err := store.ListDeals(ctx, "", false)
	if err != nil {
		t.Fatalf("ListDeals failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != deals[2].ID {
		t.Errorf("ListDeals should return 3 deals newest first, got %d", len(all))
	}

	if _, err := store.GetDeal(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetDeal(missing) err = %v, want ErrNotFound", err)
	}
}

func TestKVStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	kv := store.KV("session")
	other := store.KV("other")

	if _, ok, err := kv.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := kv.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, "token", "def"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	value, ok, err := kv.Get(ctx, "token")
	if err != nil || !ok || value != "def" {
		t.Errorf("Get = %q, %v, %v; want def, true, nil", value, ok, err)
	}

	if _, ok, _ := other.Get(ctx, "token"); ok {
		t.Error("namespaces should be isolated")
	}

	if err := kv.Remove(ctx, "token"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := kv.Remove(ctx, "token"); err != nil {
		t.Errorf("Remove of missing key should not fail: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "token"); ok {
		t.Error("token should be gone after Remove")
	}
}
