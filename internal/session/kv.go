package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mmynk/onecard/internal/models"
)

// Storage keys written at login.
const (
	KeyToken     = "token"
	KeyUser      = "userData"
	KeyLoginTime = "loginTime"
)

// KV is a string key-value store holding the login credentials.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// StoredUser is the user record kept alongside the token.
type StoredUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"userType"`
	Phone string      `json:"phone,omitempty"`
}

// SaveLogin stores the credentials of a fresh login. Writing a new login
// time is the only way a session's clock restarts.
func SaveLogin(ctx context.Context, kv KV, token string, user StoredUser, at time.Time) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := kv.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	if err := kv.Set(ctx, KeyUser, string(data)); err != nil {
		return err
	}
	return kv.Set(ctx, KeyLoginTime, strconv.FormatInt(at.UnixMilli(), 10))
}

// ClearCredentials removes everything SaveLogin wrote. All keys are
// attempted even if one removal fails; the first error is returned.
func ClearCredentials(ctx context.Context, kv KV) error {
	var first error
	for _, key := range []string{KeyToken, KeyUser, KeyLoginTime} {
		if err := kv.Remove(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LoadState reads the stored login. It returns nil, nil when there are
// no credentials, and an error when they are present but unreadable.
func LoadState(ctx context.Context, kv KV) (*State, error) {
	token, ok, err := kv.Get(ctx, KeyToken)
	if err != nil || !ok || token == "" {
		return nil, err
	}
	raw, ok, err := kv.Get(ctx, KeyUser)
	if err != nil || !ok {
		return nil, err
	}
	var user StoredUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to parse stored user: %w", err)
	}
	ts, ok, err := kv.Get(ctx, KeyLoginTime)
	if err != nil || !ok {
		return nil, err
	}
	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse login time %q: %w", ts, err)
	}

	return &State{
		LoginTimestamp: millis,
		UserType:       user.Role,
		UserName:       user.Name,
		IsActive:       true,
	}, nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (k *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *MemoryKV) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	return nil
}

func (k *MemoryKV) Remove(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}
