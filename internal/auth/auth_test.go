package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/onecard/internal/models"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func newTestAuthenticator() *PasswordAuthenticator {
	return NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()

	user, err := a.Register(ctx, Registration{
		Email:    "  Sipho@Example.com ",
		Password: "airtime-123",
		Role:     models.RoleVendor,
		Phone:    "0821234567",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "sipho@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Role != models.RoleVendor {
		t.Errorf("expected vendor role, got %q", user.Role)
	}
	if user.DisplayName != "sipho" {
		t.Errorf("expected display name from email, got %q", user.DisplayName)
	}
	if user.PasswordHash == "airtime-123" {
		t.Error("password must be hashed")
	}

	got, err := a.Authenticate(ctx, "SIPHO@example.com", "airtime-123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestRegister_DefaultsToCustomer(t *testing.T) {
	user, err := newTestAuthenticator().Register(context.Background(), Registration{
		Email:       "lerato@example.com",
		DisplayName: "Lerato",
		Password:    "password1",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("expected customer, got %q", user.Role)
	}
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()
	if _, err := a.Register(ctx, Registration{Email: "taken@example.com", Password: "password1"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tests := []struct {
		name string
		reg  Registration
		want error
	}{
		{"weak password", Registration{Email: "a@example.com", Password: "short"}, ErrWeakPassword},
		{"duplicate email", Registration{Email: "TAKEN@example.com", Password: "password1"}, ErrEmailExists},
		{"missing email", Registration{Password: "password1"}, ErrInvalidEmail},
		{"unknown role", Registration{Email: "b@example.com", Password: "password1", Role: "reseller"}, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.reg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUsers()
	a := NewPasswordAuthenticator(users).WithCost(bcrypt.MinCost)

	admin, created, err := EnsureAdmin(ctx, a, users, "Ops@Example.com", "bootstrap-1")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if !created || admin.Role != models.RoleAdmin {
		t.Errorf("expected a new admin, got created=%v role=%q", created, admin.Role)
	}

	again, created, err := EnsureAdmin(ctx, a, users, "ops@example.com", "bootstrap-1")
	if err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}
	if created || again.ID != admin.ID {
		t.Errorf("expected the existing admin, got created=%v id=%s", created, again.ID)
	}

	if _, err := a.Register(ctx, Registration{Email: "shop@example.com", Password: "password1", Role: models.RoleVendor}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, _, err := EnsureAdmin(ctx, a, users, "shop@example.com", "password1"); err == nil {
		t.Error("expected an error when the email belongs to a vendor")
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()
	if _, err := a.Register(ctx, Registration{Email: "thandi@example.com", Password: "password1"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := a.Authenticate(ctx, "thandi@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)
	user := models.NewUser("naledi@example.com", "Naledi", "hash", models.RoleAdmin)

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Errorf("unexpected identity claims: %+v", claims)
	}
	if claims.Role != models.RoleAdmin || claims.Name != "Naledi" {
		t.Errorf("unexpected role/name claims: %q %q", claims.Role, claims.Name)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != 5*time.Minute {
		t.Errorf("expected 5m TTL, got %s", ttl)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)
	user := models.NewUser("naledi@example.com", "Naledi", "hash", models.RoleCustomer)

	expired, err := m.GenerateAt(user, time.Now().Add(-6*time.Minute))
	if err != nil {
		t.Fatalf("GenerateAt failed: %v", err)
	}
	other, err := NewJWTManager("other-secret", 5*time.Minute).Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	valid, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", other},
		{"tampered", valid[:len(valid)-2] + strings.Repeat("x", 2)},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
