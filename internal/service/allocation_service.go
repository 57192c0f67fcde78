package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/auth"
	"github.com/mmynk/onecard/internal/middleware"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
	"github.com/mmynk/onecard/pkg/api"
	"github.com/mmynk/onecard/pkg/api/apiconnect"
)

// AllocationService implements the Connect AllocationService.
type AllocationService struct {
	apiconnect.UnimplementedAllocationServiceHandler
	store      storage.Store
	allocator  *allocation.Allocator
	cashback   *allocation.RateTable
	dealMarkup *allocation.RateTable
	logger     *slog.Logger
}

// NewAllocationService creates the service. Both tables must already be
// validated.
func NewAllocationService(store storage.Store, allocator *allocation.Allocator, cashback, dealMarkup *allocation.RateTable, logger *slog.Logger) *AllocationService {
	return &AllocationService{
		store:      store,
		allocator:  allocator,
		cashback:   cashback,
		dealMarkup: dealMarkup,
		logger:     logger,
	}
}

func (s *AllocationService) table(name string) (*allocation.RateTable, error) {
	switch name {
	case "", allocation.TableCashback:
		return s.cashback, nil
	case allocation.TableDealMarkup:
		return s.dealMarkup, nil
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, &allocation.ValidationError{Field: "table", Value: name, Err: allocation.ErrNoRule})
	}
}

// Calculate previews the split of a purchase without recording it. The
// role defaults to the caller's role; anonymous callers preview as
// customers.
func (s *AllocationService) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	table, err := s.table(req.Msg.Table)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(req.Msg.Mode)
	if err != nil {
		return nil, err
	}

	role := middleware.GetRole(ctx)
	if req.Msg.Role != "" {
		role = models.Role(req.Msg.Role)
	}
	if role == "" {
		role = models.RoleCustomer
	}

	res, err := table.Calculate(allocation.Input{
		Amount:              req.Msg.Amount,
		Role:                role,
		Mode:                mode,
		RecipientRegistered: req.Msg.RecipientRegistered,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CalculateResponse{Split: splitToAPI(res)}), nil
}

// Allocate records the caller's purchase and credits the wallets.
func (s *AllocationService) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	role := middleware.GetRole(ctx)

	mode, err := parseMode(req.Msg.Mode)
	if err != nil {
		return nil, err
	}
	if req.Msg.Amount.IsZero() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errAmountRequired)
	}
	if role == models.RoleCustomer && req.Msg.CustomerID != "" && req.Msg.CustomerID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, middleware.ErrForbidden)
	}
	for _, id := range []string{req.Msg.CustomerID, req.Msg.VendorID} {
		if err := s.requireUser(ctx, id); err != nil {
			return nil, err
		}
	}

	record, created, err := s.allocator.Allocate(ctx, s.cashback, allocation.Purchase{
		Reference:           req.Msg.Reference,
		PurchaserID:         userID,
		Role:                role,
		Mode:                mode,
		RecipientMSISDN:     req.Msg.RecipientMSISDN,
		RecipientRegistered: req.Msg.RecipientRegistered,
		CustomerID:          req.Msg.CustomerID,
		VendorID:            req.Msg.VendorID,
		Amount:              req.Msg.Amount,
	})
	if err != nil {
		s.logger.Warn("Allocation failed", "user_id", userID, "reference", req.Msg.Reference, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AllocateResponse{
		Allocation: allocationToAPI(record),
		Created:    created,
	}), nil
}

// requireUser checks that a referenced account exists. Empty IDs pass.
func (s *AllocationService) requireUser(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	if user == nil {
		return connect.NewError(connect.CodeNotFound, errUnknownUser)
	}
	return nil
}
