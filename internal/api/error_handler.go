package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mercadito/marketplace-api/internal/api/metrics"
	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/validation"
)

// errorResponse is the envelope for single-message errors.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse lists every violated rule.
type validationResponse struct {
	Errors []string `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Renders validation failures as {"errors": [...]} and everything else
//     as {"error": "<message>"}.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if ve, ok := validation.AsErrors(err); ok {
			metrics.ValidationFailuresTotal.WithLabelValues(resourceOf(c.Path())).Inc()
			_ = c.JSON(http.StatusBadRequest, validationResponse{Errors: ve.Messages})
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "Invalid ID format"
	case errors.Is(err, domain.ErrInvalidIdempotencyKey):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "User not logged in"
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect password"
	case errors.Is(err, domain.ErrForbidden):
		metrics.AuthzDenialsTotal.WithLabelValues("ownership").Inc()
		return http.StatusForbidden, "Forbidden: insufficient privileges"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrIdempotencyInFlight):
		return http.StatusConflict, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// resourceOf extracts "items" from "/api/v1/items/:id".
func resourceOf(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "unknown"
	}
	return parts[0]
}
