package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
)

const allocationColumns = `id, reference, rate_table, purchaser_id, role, mode, recipient_msisdn,
	recipient_registered, customer_id, vendor_id, deal_id, amount, customer_reward,
	vendor_profit, admin_fee, created_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// RecordAllocation persists the allocation and credits wallets atomically.
func (s *SQLiteStore) RecordAllocation(ctx context.Context, a *models.Allocation) (bool, error) {
	if a.Reference == "" {
		return false, errors.New("allocation reference is required")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getAllocationByReference(ctx, tx, a.PurchaserID, a.Reference)
	if err == nil {
		if !samePurchase(existing, a) {
			return false, fmt.Errorf("%w: %s", storage.ErrReferenceConflict, a.Reference)
		}
		*a = *existing
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO allocations ("+allocationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.Reference, a.Table, a.PurchaserID, string(a.Role), string(a.Mode), a.RecipientMSISDN,
		boolToInt(a.RecipientRegistered), a.CustomerID, a.VendorID, a.DealID,
		a.Amount.String(), a.CustomerReward.String(), a.VendorProfit.String(), a.AdminFee.String(),
		a.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert allocation: %w", err)
	}

	customerRole := models.RoleCustomer
	if a.CustomerID == a.PurchaserID {
		customerRole = a.Role
	}
	credits := []struct {
		owner string
		role  models.Role
		value string
	}{
		{a.CustomerID, customerRole, a.CustomerReward.String()},
		{a.VendorID, models.RoleVendor, a.VendorProfit.String()},
		{models.PlatformWalletID, models.RoleAdmin, a.AdminFee.String()},
	}
	for _, c := range credits {
		if err := creditWallet(ctx, tx, c.owner, c.role, c.value, a.CreatedAt); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// GetAllocationByReference retrieves a purchaser's allocation by its purchase reference.
func (s *SQLiteStore) GetAllocationByReference(ctx context.Context, purchaserID, reference string) (*models.Allocation, error) {
	return getAllocationByReference(ctx, s.db, purchaserID, reference)
}

func getAllocationByReference(ctx context.Context, q queryer, purchaserID, reference string) (*models.Allocation, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+allocationColumns+" FROM allocations WHERE purchaser_id = ? AND reference = ?",
		purchaserID, reference,
	)
	a, err := scanAllocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: allocation %s", storage.ErrNotFound, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

// ListAllocationsByUser retrieves a user's allocations, newest first.
func (s *SQLiteStore) ListAllocationsByUser(ctx context.Context, userID string, limit int) ([]*models.Allocation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations
		 WHERE purchaser_id = ? OR customer_id = ? OR vendor_id = ?
		 ORDER BY created_at DESC, id LIMIT ?`,
		userID, userID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []*models.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}

	return allocations, nil
}

// samePurchase compares the request fields of two allocations. The split
// itself is derived and not compared.
func samePurchase(stored, req *models.Allocation) bool {
	return stored.Table == req.Table &&
		stored.Role == req.Role &&
		stored.Mode == req.Mode &&
		stored.Amount.Equal(req.Amount) &&
		stored.RecipientMSISDN == req.RecipientMSISDN &&
		stored.RecipientRegistered == req.RecipientRegistered &&
		stored.CustomerID == req.CustomerID &&
		stored.VendorID == req.VendorID &&
		stored.DealID == req.DealID
}

func scanAllocation(row scanner) (*models.Allocation, error) {
	a := &models.Allocation{}
	var role, mode string
	var registered int
	var amount, customer, vendorProfit, admin string
	err := row.Scan(&a.ID, &a.Reference, &a.Table, &a.PurchaserID, &role, &mode, &a.RecipientMSISDN,
		&registered, &a.CustomerID, &a.VendorID, &a.DealID, &amount, &customer,
		&vendorProfit, &admin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	a.Mode = models.PurchaseMode(mode)
	a.RecipientRegistered = registered != 0

	if a.Amount, err = parseDecimal("amount", amount); err != nil {
		return nil, err
	}
	if a.CustomerReward, err = parseDecimal("customer_reward", customer); err != nil {
		return nil, err
	}
	if a.VendorProfit, err = parseDecimal("vendor_profit", vendorProfit); err != nil {
		return nil, err
	}
	if a.AdminFee, err = parseDecimal("admin_fee", admin); err != nil {
		return nil, err
	}
	return a, nil
}
