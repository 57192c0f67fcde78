// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/onecard/internal/models"
)

var (
	// ErrNotFound is wrapped by stores when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReferenceConflict is wrapped when a purchaser reuses a reference
	// for a different purchase.
	ErrReferenceConflict = errors.New("reference already used for a different purchase")
)

// Store defines the persistence operations the services depend on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new account. The email must be unique.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// RecordAllocation stores the allocation and credits the customer,
	// vendor and platform wallets in one transaction. References are
	// scoped to the purchaser. If the purchaser already recorded the same
	// purchase under the reference it is loaded into a, nothing is
	// credited and created is false. A different purchase under a used
	// reference wraps ErrReferenceConflict.
	RecordAllocation(ctx context.Context, a *models.Allocation) (created bool, err error)

	// GetAllocationByReference wraps ErrNotFound when the purchaser has no
	// allocation under the reference.
	GetAllocationByReference(ctx context.Context, purchaserID, reference string) (*models.Allocation, error)

	// ListAllocationsByUser returns the newest allocations where the user
	// was purchaser, rewarded customer or vendor.
	ListAllocationsByUser(ctx context.Context, userID string, limit int) ([]*models.Allocation, error)

	// GetWallet returns a zero-balance wallet when none has been credited yet.
	GetWallet(ctx context.Context, ownerID string) (*models.Wallet, error)

	// CreateDeal persists a new deal. The deal.ID field will be populated by the store.
	CreateDeal(ctx context.Context, deal *models.Deal) error

	// GetDeal wraps ErrNotFound when the deal does not exist.
	GetDeal(ctx context.Context, dealID string) (*models.Deal, error)

	// ListDeals returns deals, optionally filtered by network, newest first.
	ListDeals(ctx context.Context, network string, activeOnly bool) ([]*models.Deal, error)

	// Close releases any resources held by the store.
	Close() error
}
