package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUserRateLimiterIsPerUser(t *testing.T) {
	limiter := NewUserRateLimiter(1, 2)

	if !limiter.Allow(1) || !limiter.Allow(1) {
		t.Fatalf("expected burst of two for user 1")
	}
	if limiter.Allow(1) {
		t.Fatalf("expected third call to be throttled")
	}
	if !limiter.Allow(2) {
		t.Fatalf("expected user 2 to have its own bucket")
	}
}

func TestUserRateLimiterDisabled(t *testing.T) {
	limiter := NewUserRateLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow(1) {
			t.Fatalf("expected disabled limiter to allow")
		}
	}
}

func TestUserRateLimitMiddleware(t *testing.T) {
	mw := UserRateLimit(NewUserRateLimiter(1, 1), nil)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/ai/gerar-relatorio", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{ID: 9}))
		resp := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
