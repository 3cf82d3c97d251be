package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

// PrincipalResolver looks up the principal referenced by a verified token.
// A token whose user has since been deleted must fail verification, so the
// middleware confirms existence on every request.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (Principal, error)
}

// Middleware validates the bearer token, confirms the user still exists, and
// attaches the resolved Principal to the request context.
func Middleware(issuer *TokenIssuer, resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperr.Unauthorized("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.Unauthorized("invalid authorization format")
			}

			userID, orgID, err := issuer.Verify(parts[1])
			if err != nil {
				return err
			}

			principal, err := resolver.ResolvePrincipal(c.Request().Context(), userID)
			if err != nil {
				return apperr.Unauthorized("invalid or expired token")
			}
			if principal.OrgID != orgID {
				// Token org claim no longer matches the stored user.
				return apperr.Unauthorized("invalid or expired token")
			}

			ctx := WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole returns middleware that rejects principals whose role is not in
// the allowed set.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return apperr.Unauthorized("missing authorization header")
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return apperr.Forbidden("insufficient role")
		}
	}
}
