package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the per-request capability object: the authenticated user,
// their organization (the tenant every query is scoped to), and their role.
// It is resolved once by the middleware and passed through the request
// context; handlers and services never re-fetch it.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   string
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal set by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
