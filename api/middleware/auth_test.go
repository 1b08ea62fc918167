package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/auth"
	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	"gorm.io/gorm"
)

type stubUserLoader struct {
	users map[int64]*models.User
}

func (s stubUserLoader) FindByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "moradores-api",
		Audience:               "moradores-app",
		ExpirationMinutes:      60,
		RefreshTokenTTLMinutes: 120,
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID int64, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Name:   "maria",
		Email:  "maria@donazulmira.com.br",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func activeUser(id int64, role enums.Role) *models.User {
	email := "maria@donazulmira.com.br"
	return &models.User{ID: id, Username: "maria", Email: &email, Role: role, Active: true}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), stubUserLoader{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, 1, enums.RoleEnfermeiro)
	handler := Auth(cfg, stubUserLoader{users: map[int64]*models.User{1: activeUser(1, enums.RoleEnfermeiro)}}, nil)(okHandler())

	for _, header := range []string{
		token,
		"Bearer",
		"Bearer " + token + " extra",
		"Bearer  " + token,
		"Basic " + token,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.Code)
		}
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), stubUserLoader{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	refresh, err := auth.MintRefreshToken(cfg, time.Now(), auth.RefreshTokenPayload{UserID: 1})
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	handler := Auth(cfg, stubUserLoader{users: map[int64]*models.User{1: activeUser(1, enums.RoleCuidador)}}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInactiveOrMissingUser(t *testing.T) {
	cfg := testJWTConfig()
	inactive := activeUser(2, enums.RoleCuidador)
	inactive.Active = false
	loader := stubUserLoader{users: map[int64]*models.User{2: inactive}}
	handler := Auth(cfg, loader, nil)(okHandler())

	for _, id := range []int64{2, 3} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintTestToken(t, cfg, id, enums.RoleCuidador))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("user %d: expected 401 got %d", id, resp.Code)
		}
	}
}

func TestAuthAllowsValidTokenAndUsesStoredRole(t *testing.T) {
	cfg := testJWTConfig()
	// The token says Cuidador but the user was promoted since.
	token := mintTestToken(t, cfg, 7, enums.RoleCuidador)
	loader := stubUserLoader{users: map[int64]*models.User{7: activeUser(7, enums.RoleEnfermeiro)}}

	var captured Identity
	handler := Auth(cfg, loader, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.ID != 7 {
		t.Fatalf("expected user id 7 got %d", captured.ID)
	}
	if captured.Role != string(enums.RoleEnfermeiro) {
		t.Fatalf("expected stored role got %q", captured.Role)
	}
	if captured.Email != "maria@donazulmira.com.br" {
		t.Fatalf("unexpected email %q", captured.Email)
	}
}
