package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mercadito/marketplace-api/internal/api/metrics"
	"github.com/mercadito/marketplace-api/internal/api/middleware"
	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

type AccountHandler struct {
	accounts     ports.AccountService
	stats        ports.StatsService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAccountHandler(accounts ports.AccountService, stats ports.StatsService, tokenTTL time.Duration, secureCookie bool) *AccountHandler {
	return &AccountHandler{accounts: accounts, stats: stats, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please provide valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// Register creates a new account. The first account ever created becomes an
// admin.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "username, email, password, firstName, lastName, phoneNumber, ..."
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/v1/accounts/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	body, err := bindBody(c)
	if err != nil {
		return err
	}

	acc, err := h.accounts.Register(c.Request().Context(), body)
	if err != nil {
		return err
	}

	metrics.AccountsRegisteredTotal.WithLabelValues(acc.Role).Inc()
	return c.JSON(http.StatusCreated, accountResponse{Msg: "Account created", Account: acc})
}

// Login checks credentials and sets the session cookie.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/accounts/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			metrics.AuthFailuresTotal.WithLabelValues("unknown_account").Inc()
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.AuthFailuresTotal.WithLabelValues("bad_password").Inc()
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
		Expires:  time.Now().Add(h.tokenTTL),
	})
	return c.JSON(http.StatusOK, accountResponse{Msg: "Logged in successfully", Account: res.Account})
}

// Logout clears the session cookie.
//
// @Summary      Logout
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/v1/accounts/logout [get]
func (h *AccountHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(http.StatusOK, messageResponse{Msg: "Logged out successfully"})
}

// List returns every account.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  accountListResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return c.JSON(http.StatusOK, accountListResponse{Total: len(accounts), Accounts: accounts})
}

// Get returns a single account by id.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	acc, err := h.accounts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Msg: "Account found", Account: acc})
}

// Profile returns the caller's own account.
//
// @Summary      Current profile
// @Tags         accounts
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/accounts/self/profile [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	acc, err := h.accounts.Current(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Msg: "Profile found", Account: acc})
}

// UpdateProfile writes the changed fields of the caller's own account.
//
// @Summary      Update current profile
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/accounts/self/profile [put]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	body, err := bindBody(c)
	if err != nil {
		return err
	}
	acc, err := h.accounts.UpdateProfile(c.Request().Context(), id, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Msg: "Profile updated", Account: acc})
}

// Stats summarises the marketplace. Admin only.
//
// @Summary      Marketplace statistics
// @Tags         accounts
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  ports.Stats
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/accounts/admin/stats [get]
func (h *AccountHandler) Stats(c echo.Context) error {
	st, err := h.stats.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}
