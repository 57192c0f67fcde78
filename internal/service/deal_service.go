package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/auth"
	"github.com/mmynk/onecard/internal/middleware"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
	"github.com/mmynk/onecard/pkg/api"
	"github.com/mmynk/onecard/pkg/api/apiconnect"
)

var (
	errNetworkRequired = errors.New("network is required")
	errVendorRequired  = errors.New("vendor_id is required when an admin lists a deal")
	errNotAVendor      = errors.New("deal owner must be a vendor")
)

// DealService implements the Connect DealService.
type DealService struct {
	apiconnect.UnimplementedDealServiceHandler
	store     storage.Store
	allocator *allocation.Allocator
	markup    *allocation.RateTable
	logger    *slog.Logger
}

// NewDealService creates the service. markup is the deal markup table;
// its pool rate is the markup added to wholesale prices.
func NewDealService(store storage.Store, allocator *allocation.Allocator, markup *allocation.RateTable, logger *slog.Logger) *DealService {
	return &DealService{
		store:     store,
		allocator: allocator,
		markup:    markup,
		logger:    logger,
	}
}

// CreateDeal lists a new bundle. Vendors list their own deals; admins
// list on behalf of a vendor.
func (s *DealService) CreateDeal(ctx context.Context, req *connect.Request[api.CreateDealRequest]) (*connect.Response[api.CreateDealResponse], error) {
	if err := middleware.RequireRole(ctx, models.RoleVendor, models.RoleAdmin); err != nil {
		return nil, err
	}

	network := strings.TrimSpace(req.Msg.Network)
	if network == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNetworkRequired)
	}
	if !req.Msg.WholesalePrice.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, &allocation.ValidationError{
			Field: "wholesale_price",
			Value: req.Msg.WholesalePrice.String(),
			Err:   allocation.ErrInvalidAmount,
		})
	}

	vendorID := middleware.GetUserID(ctx)
	if middleware.HasRole(ctx, models.RoleAdmin) {
		if req.Msg.VendorID == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, errVendorRequired)
		}
		vendor, err := s.store.GetUserByID(ctx, req.Msg.VendorID)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		if vendor == nil {
			return nil, connect.NewError(connect.CodeNotFound, errUnknownUser)
		}
		if vendor.Role != models.RoleVendor {
			return nil, connect.NewError(connect.CodeInvalidArgument, errNotAVendor)
		}
		vendorID = vendor.ID
	}

	deal := &models.Deal{
		VendorID:       vendorID,
		Network:        network,
		Title:          strings.TrimSpace(req.Msg.Title),
		WholesalePrice: req.Msg.WholesalePrice.Round(2),
		Active:         true,
	}
	if err := s.store.CreateDeal(ctx, deal); err != nil {
		s.logger.Error("Failed to create deal", "vendor_id", vendorID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Deal created", "deal_id", deal.ID, "vendor_id", vendorID, "network", network)
	return connect.NewResponse(&api.CreateDealResponse{Deal: dealToAPI(deal, s.markup.PoolRate)}), nil
}

// ListDeals returns deals with their retail prices. Inactive deals are
// only shown to vendors and admins.
func (s *DealService) ListDeals(ctx context.Context, req *connect.Request[api.ListDealsRequest]) (*connect.Response[api.ListDealsResponse], error) {
	activeOnly := !req.Msg.IncludeInactive || !middleware.HasRole(ctx, models.RoleVendor, models.RoleAdmin)

	deals, err := s.store.ListDeals(ctx, strings.TrimSpace(req.Msg.Network), activeOnly)
	if err != nil {
		s.logger.Error("Failed to list deals", "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListDealsResponse{Deals: make([]*api.Deal, 0, len(deals))}
	for _, d := range deals {
		resp.Deals = append(resp.Deals, dealToAPI(d, s.markup.PoolRate))
	}
	return connect.NewResponse(resp), nil
}

// PurchaseDeal buys a deal and shares its markup with the deal markup
// table. The markup pool is computed on the wholesale price.
func (s *DealService) PurchaseDeal(ctx context.Context, req *connect.Request[api.PurchaseDealRequest]) (*connect.Response[api.PurchaseDealResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	role := middleware.GetRole(ctx)

	mode, err := parseMode(req.Msg.Mode)
	if err != nil {
		return nil, err
	}

	deal, err := s.store.GetDeal(ctx, req.Msg.DealID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !deal.Active {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errDealInactive)
	}

	// A purchasing vendor takes the vendor share itself; otherwise it
	// goes to the vendor who listed the deal.
	vendorID := deal.VendorID
	if role == models.RoleVendor {
		vendorID = userID
	}

	record, created, err := s.allocator.Allocate(ctx, s.markup, allocation.Purchase{
		Reference:           req.Msg.Reference,
		PurchaserID:         userID,
		Role:                role,
		Mode:                mode,
		RecipientMSISDN:     req.Msg.RecipientMSISDN,
		RecipientRegistered: req.Msg.RecipientRegistered,
		VendorID:            vendorID,
		DealID:              deal.ID,
		Amount:              deal.WholesalePrice,
	})
	if err != nil {
		s.logger.Warn("Deal purchase failed", "deal_id", deal.ID, "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.PurchaseDealResponse{
		Deal:       dealToAPI(deal, s.markup.PoolRate),
		Allocation: allocationToAPI(record),
		Created:    created,
	}), nil
}
