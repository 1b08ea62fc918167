package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "moradores-api",
		Audience:               "moradores-app",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 120,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	payload := AccessTokenPayload{
		UserID: 7,
		Name:   "maria",
		Email:  "maria@donazulmira.com.br",
		Role:   enums.RoleEnfermeiro,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Fatalf("expected subject 7, got %d (%v)", id, err)
	}
	if claims.Name != payload.Name || claims.Email != payload.Email || claims.Role != payload.Role {
		t.Fatalf("claims not preserved: %+v", claims)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != cfg.Audience {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
	if claims.ID == "" {
		t.Fatal("expected jti")
	}

	exp := now.Add(cfg.AccessTokenTTL())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestMintAccessTokenUniquePerCall(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	payload := AccessTokenPayload{UserID: 1, Role: enums.RoleCuidador}

	a, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	b, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if a == b {
		t.Fatal("tokens minted in the same second must still differ")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Role: enums.RoleMedico})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Secret = "another"
	if _, err := ParseAccessToken(other, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: 1, Role: enums.RoleCuidador})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenWrongAudience(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Role: enums.RoleCuidador})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Audience = "another-app"
	if _, err := ParseAccessToken(other, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	access, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 3, Role: enums.RoleAdministrador})
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	refresh, err := MintRefreshToken(cfg, now, RefreshTokenPayload{UserID: 3, JTI: "jti-1"})
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}

	if _, err := ParseRefreshToken(cfg, access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := ParseAccessToken(cfg, refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}

	claims, err := ParseRefreshToken(cfg, refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.ID != "jti-1" {
		t.Fatalf("expected jti-1, got %s", claims.ID)
	}
	if id, _ := claims.UserID(); id != 3 {
		t.Fatalf("expected subject 3, got %d", id)
	}
	if claims.ExpiresAt.Sub(now.Add(cfg.RefreshTokenTTL())).Abs() >= time.Second {
		t.Fatalf("unexpected refresh expiry %v", claims.ExpiresAt)
	}
}

func TestMintAccessTokenInvalidRole(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Role: ""}); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestParseAtUsesGivenClock(t *testing.T) {
	cfg := testJWTConfig()
	minted := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	token, err := MintAccessToken(cfg, minted, AccessTokenPayload{UserID: 7, Role: enums.RoleMedico})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessTokenAt(cfg, token, minted.Add(time.Minute)); err != nil {
		t.Fatalf("expected token valid one minute after minting, got %v", err)
	}
	if _, err := ParseAccessTokenAt(cfg, token, minted.Add(cfg.AccessTokenTTL()+time.Minute)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken past expiry, got %v", err)
	}

	refresh, err := MintRefreshToken(cfg, minted, RefreshTokenPayload{UserID: 7})
	if err != nil {
		t.Fatalf("mint refresh token: %v", err)
	}
	if _, err := ParseRefreshTokenAt(cfg, refresh, minted.Add(time.Minute)); err != nil {
		t.Fatalf("expected refresh valid one minute after minting, got %v", err)
	}
}
