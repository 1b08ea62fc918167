package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Consume(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

func (m *mockStore) RefreshSessionKey(userID int64, jti string) string {
	return fmt.Sprintf("sess:%d:%s", userID, jti)
}

func TestManagerRegisterAndRotate(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, ttl: time.Hour}
	ctx := context.Background()

	jti, err := manager.Register(ctx, 5)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if active, _ := manager.Active(ctx, 5, jti); !active {
		t.Fatal("expected registered jti to be active")
	}
	if active, _ := manager.Active(ctx, 6, jti); active {
		t.Fatal("jti must be bound to its user")
	}

	next, err := manager.Rotate(ctx, 5, jti)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if next == jti {
		t.Fatal("rotation must yield a new jti")
	}
	if active, _ := manager.Active(ctx, 5, jti); active {
		t.Fatal("old jti left behind")
	}
	if _, err := manager.Rotate(ctx, 5, jti); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected replayed jti to fail, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, ttl: time.Hour}
	ctx := context.Background()

	jti, err := manager.Register(ctx, 1)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := manager.Revoke(ctx, 1, jti); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := manager.Revoke(ctx, 1, jti); err != nil {
		t.Fatalf("second revoke should be a no-op: %v", err)
	}
	if _, err := manager.Rotate(ctx, 1, jti); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected revoked jti to fail rotation, got %v", err)
	}
}

func TestRotateRejectsEmptyInput(t *testing.T) {
	manager := &Manager{store: newMockStore(), ttl: time.Hour}
	if _, err := manager.Rotate(context.Background(), 0, "x"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
	if _, err := manager.Rotate(context.Background(), 1, " "); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}
