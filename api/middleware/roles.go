package middleware

import (
	"net/http"

	"github.com/donazulmira/moradores-backend/api/responses"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/logger"
)

const msgRestricted = "Acesso restrito"

// Authorize reports whether role may pass an allow-list. An empty list admits
// everyone; "*" admits any role, including values outside the enumeration.
func Authorize(allowed []string, role string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == enums.RoleWildcard || candidate == role {
			return true
		}
	}
	return false
}

// RequireRoles rejects identities whose role is not in the allow-list.
func RequireRoles(logg *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := append([]string(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			identity, ok := IdentityFromContext(r.Context())
			if !ok || !Authorize(allowed, identity.Role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, msgRestricted))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Roles converts enum values into an allow-list.
func Roles(roles ...enums.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
