package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/onecard/pkg/api"
)

// Fully-qualified service names.
const (
	AuthServiceName       = "onecard.v1.AuthService"
	AllocationServiceName = "onecard.v1.AllocationService"
	WalletServiceName     = "onecard.v1.WalletService"
	DealServiceName       = "onecard.v1.DealService"
)

// Procedure paths, each the service path followed by the method name.
const (
	AuthServiceRegisterProcedure        = "/onecard.v1.AuthService/Register"
	AuthServiceLoginProcedure           = "/onecard.v1.AuthService/Login"
	AuthServiceLogoutProcedure          = "/onecard.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure  = "/onecard.v1.AuthService/GetCurrentUser"
	AllocationServiceCalculateProcedure = "/onecard.v1.AllocationService/Calculate"
	AllocationServiceAllocateProcedure  = "/onecard.v1.AllocationService/Allocate"
	WalletServiceGetWalletProcedure     = "/onecard.v1.WalletService/GetWallet"
	DealServiceCreateDealProcedure      = "/onecard.v1.DealService/CreateDeal"
	DealServiceListDealsProcedure       = "/onecard.v1.DealService/ListDeals"
	DealServicePurchaseDealProcedure    = "/onecard.v1.DealService/PurchaseDeal"
)

// AuthServiceClient is a client for the onecard.v1.AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Logout(context.Context, *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceClient constructs a client for the onecard.v1.AuthService service.
// baseURL is the server root, for example http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opt),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opt),
		logout:         connect.NewClient[api.LogoutRequest, api.LogoutResponse](httpClient, baseURL+AuthServiceLogoutProcedure, opt),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opt),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	logout         *connect.Client[api.LogoutRequest, api.LogoutResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the server side of onecard.v1.AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Logout(context.Context, *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	registerHandler := connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opt)
	loginHandler := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opt)
	logoutHandler := connect.NewUnaryHandler(AuthServiceLogoutProcedure, svc.Logout, opt)
	getCurrentUserHandler := connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opt)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterProcedure:
			registerHandler.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			loginHandler.ServeHTTP(w, r)
		case AuthServiceLogoutProcedure:
			logoutHandler.ServeHTTP(w, r)
		case AuthServiceGetCurrentUserProcedure:
			getCurrentUserHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAuthServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAuthServiceHandler struct{}

func (UnimplementedAuthServiceHandler) Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.AuthService.Register is not implemented"))
}

func (UnimplementedAuthServiceHandler) Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.AuthService.Login is not implemented"))
}

func (UnimplementedAuthServiceHandler) Logout(context.Context, *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.AuthService.Logout is not implemented"))
}

func (UnimplementedAuthServiceHandler) GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.AuthService.GetCurrentUser is not implemented"))
}

// AllocationServiceClient is a client for the onecard.v1.AllocationService service.
type AllocationServiceClient interface {
	Calculate(context.Context, *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error)
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error)
}

// NewAllocationServiceClient constructs a client for the onecard.v1.AllocationService service.
// baseURL is the server root, for example http://localhost:8080.
func NewAllocationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AllocationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &allocationServiceClient{
		calculate: connect.NewClient[api.CalculateRequest, api.CalculateResponse](httpClient, baseURL+AllocationServiceCalculateProcedure, opt),
		allocate:  connect.NewClient[api.AllocateRequest, api.AllocateResponse](httpClient, baseURL+AllocationServiceAllocateProcedure, opt),
	}
}

type allocationServiceClient struct {
	calculate *connect.Client[api.CalculateRequest, api.CalculateResponse]
	allocate  *connect.Client[api.AllocateRequest, api.AllocateResponse]
}

func (c *allocationServiceClient) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

func (c *allocationServiceClient) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	return c.allocate.CallUnary(ctx, req)
}

// AllocationServiceHandler is implemented by the server side of onecard.v1.AllocationService.
type AllocationServiceHandler interface {
	Calculate(context.Context, *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error)
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error)
}

// NewAllocationServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewAllocationServiceHandler(svc AllocationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	calculateHandler := connect.NewUnaryHandler(AllocationServiceCalculateProcedure, svc.Calculate, opt)
	allocateHandler := connect.NewUnaryHandler(AllocationServiceAllocateProcedure, svc.Allocate, opt)
	return "/" + AllocationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AllocationServiceCalculateProcedure:
			calculateHandler.ServeHTTP(w, r)
		case AllocationServiceAllocateProcedure:
			allocateHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAllocationServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAllocationServiceHandler struct{}

func (UnimplementedAllocationServiceHandler) Calculate(context.Context, *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.AllocationService.Calculate is not implemented"))
}

func (UnimplementedAllocationServiceHandler) Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.AllocationService.Allocate is not implemented"))
}

// WalletServiceClient is a client for the onecard.v1.WalletService service.
type WalletServiceClient interface {
	GetWallet(context.Context, *connect.Request[api.GetWalletRequest]) (*connect.Response[api.GetWalletResponse], error)
}

// NewWalletServiceClient constructs a client for the onecard.v1.WalletService service.
// baseURL is the server root, for example http://localhost:8080.
func NewWalletServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) WalletServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &walletServiceClient{
		getWallet: connect.NewClient[api.GetWalletRequest, api.GetWalletResponse](httpClient, baseURL+WalletServiceGetWalletProcedure, opt),
	}
}

type walletServiceClient struct {
	getWallet *connect.Client[api.GetWalletRequest, api.GetWalletResponse]
}

func (c *walletServiceClient) GetWallet(ctx context.Context, req *connect.Request[api.GetWalletRequest]) (*connect.Response[api.GetWalletResponse], error) {
	return c.getWallet.CallUnary(ctx, req)
}

// WalletServiceHandler is implemented by the server side of onecard.v1.WalletService.
type WalletServiceHandler interface {
	GetWallet(context.Context, *connect.Request[api.GetWalletRequest]) (*connect.Response[api.GetWalletResponse], error)
}

// NewWalletServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewWalletServiceHandler(svc WalletServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	getWalletHandler := connect.NewUnaryHandler(WalletServiceGetWalletProcedure, svc.GetWallet, opt)
	return "/" + WalletServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case WalletServiceGetWalletProcedure:
			getWalletHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedWalletServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedWalletServiceHandler struct{}

func (UnimplementedWalletServiceHandler) GetWallet(context.Context, *connect.Request[api.GetWalletRequest]) (*connect.Response[api.GetWalletResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.WalletService.GetWallet is not implemented"))
}

// DealServiceClient is a client for the onecard.v1.DealService service.
type DealServiceClient interface {
	CreateDeal(context.Context, *connect.Request[api.CreateDealRequest]) (*connect.Response[api.CreateDealResponse], error)
	ListDeals(context.Context, *connect.Request[api.ListDealsRequest]) (*connect.Response[api.ListDealsResponse], error)
	PurchaseDeal(context.Context, *connect.Request[api.PurchaseDealRequest]) (*connect.Response[api.PurchaseDealResponse], error)
}

// NewDealServiceClient constructs a client for the onecard.v1.DealService service.
// baseURL is the server root, for example http://localhost:8080.
func NewDealServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DealServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &dealServiceClient{
		createDeal:   connect.NewClient[api.CreateDealRequest, api.CreateDealResponse](httpClient, baseURL+DealServiceCreateDealProcedure, opt),
		listDeals:    connect.NewClient[api.ListDealsRequest, api.ListDealsResponse](httpClient, baseURL+DealServiceListDealsProcedure, opt),
		purchaseDeal: connect.NewClient[api.PurchaseDealRequest, api.PurchaseDealResponse](httpClient, baseURL+DealServicePurchaseDealProcedure, opt),
	}
}

type dealServiceClient struct {
	createDeal   *connect.Client[api.CreateDealRequest, api.CreateDealResponse]
	listDeals    *connect.Client[api.ListDealsRequest, api.ListDealsResponse]
	purchaseDeal *connect.Client[api.PurchaseDealRequest, api.PurchaseDealResponse]
}

func (c *dealServiceClient) CreateDeal(ctx context.Context, req *connect.Request[api.CreateDealRequest]) (*connect.Response[api.CreateDealResponse], error) {
	return c.createDeal.CallUnary(ctx, req)
}

func (c *dealServiceClient) ListDeals(ctx context.Context, req *connect.Request[api.ListDealsRequest]) (*connect.Response[api.ListDealsResponse], error) {
	return c.listDeals.CallUnary(ctx, req)
}

func (c *dealServiceClient) PurchaseDeal(ctx context.Context, req *connect.Request[api.PurchaseDealRequest]) (*connect.Response[api.PurchaseDealResponse], error) {
	return c.purchaseDeal.CallUnary(ctx, req)
}

// DealServiceHandler is implemented by the server side of onecard.v1.DealService.
type DealServiceHandler interface {
	CreateDeal(context.Context, *connect.Request[api.CreateDealRequest]) (*connect.Response[api.CreateDealResponse], error)
	ListDeals(context.Context, *connect.Request[api.ListDealsRequest]) (*connect.Response[api.ListDealsResponse], error)
	PurchaseDeal(context.Context, *connect.Request[api.PurchaseDealRequest]) (*connect.Response[api.PurchaseDealResponse], error)
}

// NewDealServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewDealServiceHandler(svc DealServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	createDealHandler := connect.NewUnaryHandler(DealServiceCreateDealProcedure, svc.CreateDeal, opt)
	listDealsHandler := connect.NewUnaryHandler(DealServiceListDealsProcedure, svc.ListDeals, opt)
	purchaseDealHandler := connect.NewUnaryHandler(DealServicePurchaseDealProcedure, svc.PurchaseDeal, opt)
	return "/" + DealServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DealServiceCreateDealProcedure:
			createDealHandler.ServeHTTP(w, r)
		case DealServiceListDealsProcedure:
			listDealsHandler.ServeHTTP(w, r)
		case DealServicePurchaseDealProcedure:
			purchaseDealHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedDealServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedDealServiceHandler struct{}

func (UnimplementedDealServiceHandler) CreateDeal(context.Context, *connect.Request[api.CreateDealRequest]) (*connect.Response[api.CreateDealResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.DealService.CreateDeal is not implemented"))
}

func (UnimplementedDealServiceHandler) ListDeals(context.Context, *connect.Request[api.ListDealsRequest]) (*connect.Response[api.ListDealsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.DealService.ListDeals is not implemented"))
}

func (UnimplementedDealServiceHandler) PurchaseDeal(context.Context, *connect.Request[api.PurchaseDealRequest]) (*connect.Response[api.PurchaseDealResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("onecard.v1.DealService.PurchaseDeal is not implemented"))
}
