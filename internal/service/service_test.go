package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/auth"
	"github.com/mmynk/onecard/internal/middleware"
	"github.com/mmynk/onecard/internal/storage/sqlite"
	"github.com/mmynk/onecard/pkg/api"
	"github.com/mmynk/onecard/pkg/api/apiconnect"
)

type testEnv struct {
	store         *sqlite.SQLiteStore
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager

	auth       apiconnect.AuthServiceClient
	allocation apiconnect.AllocationServiceClient
	wallet     apiconnect.WalletServiceClient
	deal       apiconnect.DealServiceClient
}

// setupTestServer serves all four services over httptest with a SQLite
// database in a temp dir.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.Default()
	jwtManager := auth.NewJWTManager("test-secret", 5*time.Minute)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	allocator := allocation.NewAllocator(store, nil, logger)
	cashback := allocation.DefaultCashbackTable()
	markup := allocation.DefaultDealMarkupTable()

	optional := connect.WithInterceptors(middleware.OptionalAuth(jwtManager))
	required := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, logger), optional))
	mux.Handle(apiconnect.NewAllocationServiceHandler(NewAllocationService(store, allocator, cashback, markup, logger), optional))
	mux.Handle(apiconnect.NewWalletServiceHandler(NewWalletService(store, logger), required))
	mux.Handle(apiconnect.NewDealServiceHandler(NewDealService(store, allocator, markup, logger), optional))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,

		auth:       apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		allocation: apiconnect.NewAllocationServiceClient(http.DefaultClient, server.URL),
		wallet:     apiconnect.NewWalletServiceClient(http.DefaultClient, server.URL),
		deal:       apiconnect.NewDealServiceClient(http.DefaultClient, server.URL),
	}
}

type account struct {
	ID    string
	Token string
}

// register creates an account and returns its ID and token.
func (e *testEnv) register(t *testing.T, email, role string) account {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: "password123",
		Role:     role,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return account{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

// seedAdmin creates an admin through the bootstrap path and returns its token.
func (e *testEnv) seedAdmin(t *testing.T, email string) account {
	t.Helper()
	user, _, err := auth.EnsureAdmin(context.Background(), e.authenticator, e.store, email, "password123")
	if err != nil {
		t.Fatalf("EnsureAdmin(%s) failed: %v", email, err)
	}
	token, err := e.jwtManager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return account{ID: user.ID, Token: token}
}

// authed wraps msg in a request carrying the account's bearer token.
func authed[T any](a account, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+a.Token)
	return req
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
