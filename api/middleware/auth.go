package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/donazulmira/moradores-backend/api/responses"
	"github.com/donazulmira/moradores-backend/pkg/auth"
	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	msgNotLoggedIn   = "Não logado!"
	msgInvalidToken  = "Token inválido ou expirado"
	msgUnauthorized  = "Usuário não autorizado!"
	bearerScheme     = "bearer"
	authorizationHdr = "Authorization"
)

type userLoader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth validates the bearer access token and reloads the user it names. Only
// active users pass; the stored role, not the token claim, is authoritative.
func Auth(cfg config.JWTConfig, users userLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get(authorizationHdr))
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNotLoggedIn))
				return
			}

			claims, err := auth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken))
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken))
				return
			}

			user, err := users.FindByID(ctx, userID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user"))
				return
			}
			if user == nil || !user.Active {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgUnauthorized))
				return
			}

			identity := Identity{
				ID:       user.ID,
				Username: user.Username,
				Role:     string(user.Role),
			}
			if user.Email != nil {
				identity.Email = *user.Email
			}

			ctx = WithIdentity(ctx, identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.ID)
				ctx = logg.WithActorRole(ctx, identity.Role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts exactly "<scheme> <token>" with a Bearer scheme in any
// letter case.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	if !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}
	return parts[1], true
}
