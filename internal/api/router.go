package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/mercadito/marketplace-api/docs" // swagger docs
	"github.com/mercadito/marketplace-api/internal/api/handler"
	"github.com/mercadito/marketplace-api/internal/api/middleware"
	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Accounts ports.AccountService
	Items    ports.ItemService
	Stats    ports.StatsService
	Tokens   ports.TokenService
	Log      zerolog.Logger

	// SecureCookie sets the Secure flag on the session cookie.
	SecureCookie bool

	// Liveness and Readiness serve /health and /health/ready.
	Liveness  echo.HandlerFunc
	Readiness echo.HandlerFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// HTTP metrics live in their own registry; /metrics serves it together
	// with the default registry holding the domain metrics.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "marketplace",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	requireIdentity := middleware.RequireIdentity(d.Tokens)
	optionalIdentity := middleware.OptionalIdentity(d.Tokens)

	// --- Accounts ---
	accounts := handler.NewAccountHandler(d.Accounts, d.Stats, d.Tokens.TTL(), d.SecureCookie)
	ag := e.Group("/api/v1/accounts")
	ag.POST("/register", accounts.Register)
	ag.POST("/login", accounts.Login)
	ag.GET("/logout", accounts.Logout)
	ag.GET("", accounts.List, requireIdentity)
	ag.GET("/self/profile", accounts.Profile, requireIdentity)
	ag.PUT("/self/profile", accounts.UpdateProfile, requireIdentity)
	ag.GET("/admin/stats", accounts.Stats, requireIdentity, middleware.RequireRole(domain.RoleAdmin))
	ag.GET("/:id", accounts.Get)

	// --- Items ---
	items := handler.NewItemHandler(d.Items)
	ig := e.Group("/api/v1/items")
	ig.GET("", items.List, optionalIdentity)
	ig.POST("", items.Create, requireIdentity)
	ig.GET("/current", items.Current, requireIdentity)
	ig.GET("/:id", items.Get, optionalIdentity)
	ig.PUT("/:id", items.Update, requireIdentity)
	ig.DELETE("/:id", items.Delete, requireIdentity)

	// --- Operations (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if d.Liveness != nil {
		e.GET("/health", d.Liveness)
	}
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness)
	}

	return e
}
