package middleware

import "context"

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the authenticated user reloaded from storage for the request.
type Identity struct {
	ID       int64
	Username string
	Email    string
	Role     string
}

// WithIdentity injects the authenticated user into the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(Identity)
	return identity, ok
}

func UserIDFromContext(ctx context.Context) int64 {
	identity, _ := IdentityFromContext(ctx)
	return identity.ID
}

func RoleFromContext(ctx context.Context) string {
	identity, _ := IdentityFromContext(ctx)
	return identity.Role
}
