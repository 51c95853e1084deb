package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mercadito/marketplace-api/internal/api/metrics"
)

// RequireRole enforces role-based access control. It must run after
// RequireIdentity.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not logged in")
			}
			if _, ok := allowed[id.Role]; !ok {
				metrics.AuthzDenialsTotal.WithLabelValues("role").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden: insufficient privileges")
			}
			return next(c)
		}
	}
}
