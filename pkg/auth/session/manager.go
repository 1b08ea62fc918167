package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/config"
	redisclient "github.com/donazulmira/moradores-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrInvalidRefreshToken is returned when a refresh jti is unknown, revoked
// or already rotated.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Consume(ctx context.Context, key string) (bool, error)
	RefreshSessionKey(userID int64, jti string) string
}

// Manager tracks live refresh tokens by their jti so they can be rotated and
// revoked before their JWT expiry.
type Manager struct {
	store sessionStore
	ttl   time.Duration
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if ttl <= cfg.AccessTokenTTL() {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, cfg.AccessTokenTTL())
	}
	return &Manager{store: client, ttl: ttl}, nil
}

// Register records a freshly minted refresh token and returns its jti.
func (m *Manager) Register(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id is required")
	}
	jti := NewJTI()
	if err := m.store.Set(ctx, m.store.RefreshSessionKey(userID, jti), "1", m.ttl); err != nil {
		return "", err
	}
	return jti, nil
}

// Rotate consumes the old jti and registers a new one. A jti can be rotated
// exactly once.
func (m *Manager) Rotate(ctx context.Context, userID int64, oldJTI string) (string, error) {
	if userID <= 0 || strings.TrimSpace(oldJTI) == "" {
		return "", ErrInvalidRefreshToken
	}
	consumed, err := m.store.Consume(ctx, m.store.RefreshSessionKey(userID, oldJTI))
	if err != nil {
		return "", err
	}
	if !consumed {
		return "", ErrInvalidRefreshToken
	}
	return m.Register(ctx, userID)
}

// Revoke drops the jti. Revoking an unknown jti is not an error.
func (m *Manager) Revoke(ctx context.Context, userID int64, jti string) error {
	if userID <= 0 || strings.TrimSpace(jti) == "" {
		return nil
	}
	_, err := m.store.Consume(ctx, m.store.RefreshSessionKey(userID, jti))
	return err
}

// Active reports whether the jti is still registered.
func (m *Manager) Active(ctx context.Context, userID int64, jti string) (bool, error) {
	if userID <= 0 || strings.TrimSpace(jti) == "" {
		return false, nil
	}
	if _, err := m.store.Get(ctx, m.store.RefreshSessionKey(userID, jti)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewJTI produces the identifier used as the refresh JWT id and Redis key.
func NewJTI() string {
	return uuid.NewString()
}
