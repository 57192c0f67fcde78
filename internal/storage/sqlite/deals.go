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

const dealColumns = "id, vendor_id, network, title, wholesale_price, active, created_at"

// CreateDeal persists a new deal to the database.
func (s *SQLiteStore) CreateDeal(ctx context.Context, deal *models.Deal) error {
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}
	if deal.CreatedAt == 0 {
		deal.CreatedAt = time.Now().Unix()
	}
	if deal.Title == "" {
		deal.Title = fmt.Sprintf("%s bundle", deal.Network)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO deals ("+dealColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		deal.ID, deal.VendorID, deal.Network, deal.Title, deal.WholesalePrice.String(),
		boolToInt(deal.Active), deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal: %w", err)
	}
	return nil
}

// GetDeal retrieves a deal by ID.
func (s *SQLiteStore) GetDeal(ctx context.Context, dealID string) (*models.Deal, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+dealColumns+" FROM deals WHERE id = ?", dealID)
	deal, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: deal %s", storage.ErrNotFound, dealID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

// ListDeals retrieves deals, newest first.
func (s *SQLiteStore) ListDeals(ctx context.Context, network string, activeOnly bool) ([]*models.Deal, error) {
	query := "SELECT " + dealColumns + " FROM deals WHERE 1 = 1"
	var args []any
	if network != "" {
		query += " AND network = ?"
		args = append(args, network)
	}
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}
	return deals, nil
}

func scanDeal(row scanner) (*models.Deal, error) {
	deal := &models.Deal{}
	var price string
	var active int
	if err := row.Scan(&deal.ID, &deal.VendorID, &deal.Network, &deal.Title, &price, &active, &deal.CreatedAt); err != nil {
		return nil, err
	}
	deal.Active = active != 0

	var err error
	if deal.WholesalePrice, err = parseDecimal("wholesale_price", price); err != nil {
		return nil, err
	}
	return deal, nil
}
