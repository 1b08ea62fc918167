package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/donazulmira/moradores-backend/pkg/enums"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		role    string
		want    bool
	}{
		{"empty list admits", nil, "Cuidador", true},
		{"member admitted", Roles(enums.RoleEnfermeiro, enums.RoleCuidador), "Cuidador", true},
		{"non member rejected", Roles(enums.RoleAdministrador), "Cuidador", false},
		{"wildcard admits unknown role", []string{"*"}, "Zelador", true},
		{"wildcard admits empty role", []string{"*"}, "", true},
		{"case sensitive", Roles(enums.RoleEnfermeiro), "enfermeiro", false},
	}
	for _, tt := range tests {
		if got := Authorize(tt.allowed, tt.role); got != tt.want {
			t.Fatalf("%s: expected %v got %v", tt.name, tt.want, got)
		}
	}
}

func TestRequireRoles(t *testing.T) {
	mw := RequireRoles(nil, string(enums.RoleAdministrador))

	req := httptest.NewRequest(http.MethodDelete, "/morador/1", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{ID: 1, Role: string(enums.RoleCuidador)}))
	resp := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/morador/1", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{ID: 2, Role: string(enums.RoleAdministrador)}))
	resp = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequireRolesWithoutIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	resp := httptest.NewRecorder()
	RequireRoles(nil, "*")(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for anonymous caller got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	RequireRoles(nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected empty allow-list to admit got %d", resp.Code)
	}
}
