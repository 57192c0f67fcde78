package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/onecard/internal/metrics"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
)

// Store persists allocations and credits the affected wallets. A
// reference identifies one purchase per purchaser.
type Store interface {
	RecordAllocation(ctx context.Context, a *models.Allocation) (bool, error)
}

// Purchase is a purchase event together with the parties to credit.
type Purchase struct {
	// Reference makes Allocate idempotent. Generated when empty.
	Reference string

	PurchaserID         string
	Role                models.Role
	Mode                models.PurchaseMode
	RecipientMSISDN     string
	RecipientRegistered bool

	// CustomerID receives the customer reward. Customer purchasers
	// default to themselves.
	CustomerID string

	// VendorID receives the vendor profit. Vendor purchasers default to
	// themselves; deal purchases pass the deal owner.
	VendorID string

	DealID string
	Amount decimal.Decimal
}

// Allocator computes a split and hands it to the store.
type Allocator struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAllocator creates an allocator. m may be nil.
func NewAllocator(store Store, m *metrics.Metrics, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{store: store, metrics: m, logger: logger}
}

// Allocate computes the split of p with table and records it. The bool
// reports whether a new allocation was created; a repeated reference
// returns the stored allocation and false.
func (a *Allocator) Allocate(ctx context.Context, table *RateTable, p Purchase) (*models.Allocation, bool, error) {
	res, err := table.Calculate(Input{
		Amount:              p.Amount,
		Role:                p.Role,
		Mode:                p.Mode,
		RecipientRegistered: p.RecipientRegistered,
	})
	if err != nil {
		a.metrics.ObserveAllocationError(errorReason(err))
		return nil, false, err
	}

	if p.Reference == "" {
		p.Reference = uuid.New().String()
	}
	if p.CustomerID == "" && p.Role == models.RoleCustomer {
		p.CustomerID = p.PurchaserID
	}
	if p.VendorID == "" && p.Role == models.RoleVendor {
		p.VendorID = p.PurchaserID
	}

	record := &models.Allocation{
		Reference:           p.Reference,
		Table:               table.Name,
		PurchaserID:         p.PurchaserID,
		Role:                p.Role,
		Mode:                p.Mode,
		RecipientMSISDN:     p.RecipientMSISDN,
		RecipientRegistered: p.RecipientRegistered,
		CustomerID:          p.CustomerID,
		VendorID:            p.VendorID,
		DealID:              p.DealID,
		Amount:              res.TotalAmount,
		CustomerReward:      res.CustomerReward,
		VendorProfit:        res.VendorProfit,
		AdminFee:            res.AdminFee,
	}
	if record.VendorProfit.IsZero() {
		record.VendorID = ""
	}

	created, err := a.store.RecordAllocation(ctx, record)
	if err != nil {
		reason := "storage"
		if errors.Is(err, storage.ErrReferenceConflict) {
			reason = "reference_conflict"
		}
		a.metrics.ObserveAllocationError(reason)
		return nil, false, fmt.Errorf("failed to record allocation %s: %w", p.Reference, err)
	}

	if created {
		a.metrics.ObserveAllocation(table.Name, string(p.Role),
			record.CustomerReward.InexactFloat64(),
			record.VendorProfit.InexactFloat64(),
			record.AdminFee.InexactFloat64(),
		)
		a.logger.Info("Allocation recorded",
			"reference", record.Reference,
			"table", table.Name,
			"role", p.Role,
			"amount", record.Amount.StringFixed(2),
			"customer_reward", record.CustomerReward.StringFixed(2),
			"vendor_profit", record.VendorProfit.StringFixed(2),
			"admin_fee", record.AdminFee.StringFixed(2),
		)
	} else {
		a.logger.Info("Allocation replayed", "reference", record.Reference)
	}

	return record, created, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrUnknownRole), errors.Is(err, ErrUnknownMode):
		return "invalid_party"
	case errors.Is(err, ErrNoRule):
		return "no_rule"
	case errors.Is(err, ErrAllocationExceedsTotal):
		return "exceeds_total"
	default:
		return "unknown"
	}
}
