package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mercadito/marketplace-api/internal/api/metrics"
	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

const identityKey = "identity"

type identityCtxKey struct{}

// RequireIdentity verifies the session cookie and attaches the identity to
// the request. Requests without a valid token are rejected with 401.
func RequireIdentity(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "User not logged in")
			}

			id, err := tokens.Verify(cookie.Value)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			SetIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalIdentity attaches the identity when a valid session cookie is
// present and otherwise lets the request through anonymously.
func OptionalIdentity(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
				if id, err := tokens.Verify(cookie.Value); err == nil {
					SetIdentity(c, id)
				}
			}
			return next(c)
		}
	}
}

// SetIdentity stores id on both the echo context and the request context.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), identityCtxKey{}, id)))
}

// IdentityFrom returns the identity attached by RequireIdentity or
// OptionalIdentity.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok && !id.IsZero()
}

// IdentityFromContext is IdentityFrom for code holding only a context.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return id, ok && !id.IsZero()
}
