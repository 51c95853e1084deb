package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mercadito/marketplace-api/internal/api/middleware"
	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// currentIdentity returns the identity attached by the identity middleware.
// Routes that reach a handler without one are misconfigured; they still fail
// closed with 401.
func currentIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// bindBody decodes a JSON request body into a generic map. A missing body
// yields a nil map.
func bindBody(c echo.Context) (map[string]any, error) {
	var body map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return body, nil
}
