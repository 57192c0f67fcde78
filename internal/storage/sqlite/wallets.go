package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/onecard/internal/models"
)

// GetWallet retrieves a OneCard wallet. Owners that were never credited
// get a zero balance.
func (s *SQLiteStore) GetWallet(ctx context.Context, ownerID string) (*models.Wallet, error) {
	w := &models.Wallet{OwnerID: ownerID, Balance: decimal.Zero}
	var role, balance string
	err := s.db.QueryRowContext(ctx,
		"SELECT role, balance, updated_at FROM wallets WHERE owner_id = ?",
		ownerID,
	).Scan(&role, &balance, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	w.Role = models.Role(role)
	if w.Balance, err = parseDecimal("balance", balance); err != nil {
		return nil, err
	}
	return w, nil
}

// creditWallet adds amount to the owner's balance inside tx.
// Empty owners and zero amounts are skipped.
func creditWallet(ctx context.Context, tx *sql.Tx, ownerID string, role models.Role, amount string, now int64) error {
	if ownerID == "" {
		return nil
	}
	credit, err := parseDecimal("credit", amount)
	if err != nil {
		return err
	}
	if credit.IsZero() {
		return nil
	}

	current := decimal.Zero
	var balance string
	err = tx.QueryRowContext(ctx, "SELECT balance FROM wallets WHERE owner_id = ?", ownerID).Scan(&balance)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to read wallet %s: %w", ownerID, err)
	default:
		if current, err = parseDecimal("balance", balance); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallets (owner_id, role, balance, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at`,
		ownerID, string(role), current.Add(credit).String(), now,
	)
	if err != nil {
		return fmt.Errorf("failed to credit wallet %s: %w", ownerID, err)
	}
	return nil
}
