package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/onecard/internal/auth"
	"github.com/mmynk/onecard/internal/middleware"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/storage"
	"github.com/mmynk/onecard/pkg/api"
	"github.com/mmynk/onecard/pkg/api/apiconnect"
)

const defaultRecentAllocations = 20

// WalletService implements the Connect WalletService.
type WalletService struct {
	apiconnect.UnimplementedWalletServiceHandler
	store  storage.Store
	logger *slog.Logger
}

func NewWalletService(store storage.Store, logger *slog.Logger) *WalletService {
	return &WalletService{store: store, logger: logger}
}

// GetWallet returns a balance and the allocations that touched it.
// Only admins may read another owner's wallet.
func (s *WalletService) GetWallet(ctx context.Context, req *connect.Request[api.GetWalletRequest]) (*connect.Response[api.GetWalletResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	ownerID := req.Msg.OwnerID
	if ownerID == "" {
		ownerID = userID
	}
	if ownerID != userID && !middleware.HasRole(ctx, models.RoleAdmin) {
		return nil, connect.NewError(connect.CodePermissionDenied, middleware.ErrForbidden)
	}

	wallet, err := s.store.GetWallet(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to load wallet", "owner_id", ownerID, "error", err)
		return nil, toConnectError(err)
	}
	if wallet.Role == "" && ownerID == userID {
		wallet.Role = middleware.GetRole(ctx)
	}

	limit := req.Msg.Limit
	if limit <= 0 {
		limit = defaultRecentAllocations
	}
	records, err := s.store.ListAllocationsByUser(ctx, ownerID, limit)
	if err != nil {
		s.logger.Error("Failed to list allocations", "owner_id", ownerID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetWalletResponse{
		Wallet:            walletToAPI(wallet),
		RecentAllocations: make([]*api.Allocation, 0, len(records)),
	}
	for _, r := range records {
		resp.RecentAllocations = append(resp.RecentAllocations, allocationToAPI(r))
	}
	return connect.NewResponse(resp), nil
}
