package controllers

import (
	"net/http"

	"github.com/donazulmira/moradores-backend/api/middleware"
	"github.com/donazulmira/moradores-backend/api/responses"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/logger"
)

// currentUser returns the authenticated identity or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.ID <= 0 {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Não logado!"))
		return middleware.Identity{}, false
	}
	return identity, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
