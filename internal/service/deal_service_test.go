package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/pkg/api"
)

func TestCreateAndListDeals(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	vendor := env.register(t, "vendor@example.com", "vendor")
	customer := env.register(t, "customer@example.com", "customer")
	admin := env.seedAdmin(t, "admin@example.com")

	created, err := env.deal.CreateDeal(ctx, authed(vendor, &api.CreateDealRequest{
		Network:        "Vodacom",
		Title:          "1GB monthly",
		WholesalePrice: d("99"),
	}))
	if err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}
	if created.Msg.Deal.VendorID != vendor.ID {
		t.Errorf("expected vendor %s to own the deal, got %s", vendor.ID, created.Msg.Deal.VendorID)
	}
	assertMoney(t, "price", created.Msg.Deal.Price, "108.90")

	if _, err := env.deal.CreateDeal(ctx, authed(admin, &api.CreateDealRequest{
		Network:        "MTN",
		WholesalePrice: d("50"),
		VendorID:       vendor.ID,
	})); err != nil {
		t.Fatalf("admin CreateDeal failed: %v", err)
	}

	_, err = env.deal.CreateDeal(ctx, authed(customer, &api.CreateDealRequest{Network: "MTN", WholesalePrice: d("10")}))
	expectCode(t, err, connect.CodePermissionDenied)

	_, err = env.deal.CreateDeal(ctx, authed(admin, &api.CreateDealRequest{Network: "MTN", WholesalePrice: d("10")}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.deal.CreateDeal(ctx, authed(admin, &api.CreateDealRequest{Network: "MTN", WholesalePrice: d("10"), VendorID: customer.ID}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.deal.CreateDeal(ctx, authed(vendor, &api.CreateDealRequest{Network: "MTN", WholesalePrice: d("0")}))
	expectCode(t, err, connect.CodeInvalidArgument)

	all, err := env.deal.ListDeals(ctx, connect.NewRequest(&api.ListDealsRequest{}))
	if err != nil {
		t.Fatalf("ListDeals failed: %v", err)
	}
	if len(all.Msg.Deals) != 2 {
		t.Errorf("expected 2 deals, got %d", len(all.Msg.Deals))
	}

	mtn, err := env.deal.ListDeals(ctx, connect.NewRequest(&api.ListDealsRequest{Network: "MTN"}))
	if err != nil {
		t.Fatalf("ListDeals(MTN) failed: %v", err)
	}
	if len(mtn.Msg.Deals) != 1 || mtn.Msg.Deals[0].Title != "MTN bundle" {
		t.Errorf("unexpected MTN deals: %+v", mtn.Msg.Deals)
	}
}

func TestPurchaseDeal(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	vendor := env.register(t, "vendor@example.com", "vendor")
	customer := env.register(t, "customer@example.com", "customer")

	created, err := env.deal.CreateDeal(ctx, authed(vendor, &api.CreateDealRequest{
		Network:        "Telkom",
		WholesalePrice: d("100"),
	}))
	if err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}
	dealID := created.Msg.Deal.ID

	resp, err := env.deal.PurchaseDeal(ctx, authed(customer, &api.PurchaseDealRequest{
		DealID:    dealID,
		Reference: "order-1",
		Mode:      "self",
	}))
	if err != nil {
		t.Fatalf("PurchaseDeal failed: %v", err)
	}
	a := resp.Msg.Allocation
	if a.Table != "deal_markup" || a.DealID != dealID {
		t.Errorf("unexpected allocation: %+v", a)
	}
	assertMoney(t, "price", resp.Msg.Deal.Price, "110.00")
	assertMoney(t, "customer share", a.CustomerReward, "5.00")
	assertMoney(t, "vendor share", a.VendorProfit, "2.50")
	assertMoney(t, "admin share", a.AdminFee, "2.50")
	if a.VendorID != vendor.ID {
		t.Errorf("expected deal owner %s to share the markup, got %q", vendor.ID, a.VendorID)
	}

	// Buying for someone else leaves the vendor out.
	gift, err := env.deal.PurchaseDeal(ctx, authed(customer, &api.PurchaseDealRequest{
		DealID:          dealID,
		Mode:            "other",
		RecipientMSISDN: "0831234567",
	}))
	if err != nil {
		t.Fatalf("PurchaseDeal(other) failed: %v", err)
	}
	assertMoney(t, "gift customer share", gift.Msg.Allocation.CustomerReward, "5.00")
	assertMoney(t, "gift admin share", gift.Msg.Allocation.AdminFee, "5.00")
	if gift.Msg.Allocation.VendorID != "" {
		t.Errorf("expected no vendor on a gift, got %q", gift.Msg.Allocation.VendorID)
	}

	w, err := env.store.GetWallet(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	assertMoney(t, "vendor wallet", w.Balance, "2.50")

	ledger, err := env.store.GetWallet(ctx, models.PlatformWalletID)
	if err != nil {
		t.Fatalf("GetWallet(platform) failed: %v", err)
	}
	assertMoney(t, "platform wallet", ledger.Balance, "7.50")
}

func TestPurchaseDeal_Errors(t *testing.T) {
	env := setupTestServer(t)
	customer := env.register(t, "customer@example.com", "customer")

	_, err := env.deal.PurchaseDeal(context.Background(), authed(customer, &api.PurchaseDealRequest{DealID: "missing", Mode: "self"}))
	expectCode(t, err, connect.CodeNotFound)

	_, err = env.deal.PurchaseDeal(context.Background(), connect.NewRequest(&api.PurchaseDealRequest{DealID: "missing"}))
	expectCode(t, err, connect.CodeUnauthenticated)
}
