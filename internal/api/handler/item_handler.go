package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mercadito/marketplace-api/internal/api/metrics"
	"github.com/mercadito/marketplace-api/internal/api/middleware"
	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

// IdempotencyHeader lets clients retry item creation safely.
const IdempotencyHeader = "Idempotency-Key"

// ItemHandler handles HTTP requests for item listings.
type ItemHandler struct {
	items ports.ItemService
}

func NewItemHandler(items ports.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

func bindItemFilter(c echo.Context) (ports.ItemFilter, error) {
	var f ports.ItemFilter
	err := echo.QueryParamsBinder(c).
		String("category", &f.Category).
		String("condition", &f.Condition).
		String("seller", &f.SellerID).
		String("search", &f.Search).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		BindError()
	if err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return f, nil
}

// List handles GET /api/v1/items. Anonymous callers and regular accounts see
// available items only; admins see everything.
//
// @Summary      List items
// @Tags         items
// @Produce      json
// @Param        category   query     string  false  "Category"
// @Param        condition  query     string  false  "new, used or refurbished"
// @Param        seller     query     string  false  "Seller account id"
// @Param        search     query     string  false  "Partial match on title"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  itemPageResponse
// @Failure      400        {object}  errorResponse
// @Router       /api/v1/items [get]
func (h *ItemHandler) List(c echo.Context) error {
	f, err := bindItemFilter(c)
	if err != nil {
		return err
	}
	id, _ := middleware.IdentityFrom(c)

	page, err := h.items.List(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toItemPage(page))
}

// Current handles GET /api/v1/items/current: the caller's own listings.
//
// @Summary      List my items
// @Tags         items
// @Produce      json
// @Security     CookieAuth
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  itemPageResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/v1/items/current [get]
func (h *ItemHandler) Current(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	f, err := bindItemFilter(c)
	if err != nil {
		return err
	}

	page, err := h.items.ListOwned(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toItemPage(page))
}

// Create handles POST /api/v1/items. The seller is always the caller.
//
// @Summary      Create an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        Idempotency-Key  header    string  false  "UUID; repeating it returns the item created first"
// @Param        body             body      object  true   "Item fields"
// @Success      201              {object}  itemResponse
// @Success      200              {object}  itemResponse  "Replayed Idempotency-Key"
// @Failure      400              {object}  validationErrorResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/v1/items [post]
func (h *ItemHandler) Create(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	body, err := bindBody(c)
	if err != nil {
		return err
	}
	key := c.Request().Header.Get(IdempotencyHeader)

	res, err := h.items.Create(c.Request().Context(), id, body, key)
	if err != nil {
		return err
	}

	if res.Replayed {
		metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
		return c.JSON(http.StatusOK, itemResponse{Msg: "Item already created", Item: res.Item})
	}
	if key != "" {
		metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
	}
	metrics.ItemsCreatedTotal.WithLabelValues(res.Item.Category).Inc()
	return c.JSON(http.StatusCreated, itemResponse{Msg: "Item created", Item: res.Item})
}

// Get handles GET /api/v1/items/:id.
//
// @Summary      Get an item
// @Tags         items
// @Produce      json
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  itemResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/items/{id} [get]
func (h *ItemHandler) Get(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)
	item, err := h.items.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemResponse{Msg: "Item found", Item: item})
}

// Update handles PUT /api/v1/items/:id. Only the seller or an admin may
// change an item.
//
// @Summary      Update an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string  true  "Item id"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  itemResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/items/{id} [put]
func (h *ItemHandler) Update(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	body, err := bindBody(c)
	if err != nil {
		return err
	}

	item, err := h.items.Update(c.Request().Context(), id, c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemResponse{Msg: "Item updated", Item: item})
}

// Delete handles DELETE /api/v1/items/:id.
//
// @Summary      Delete an item
// @Tags         items
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/items/{id} [delete]
func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.items.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "Item deleted"})
}

func toItemPage(p *ports.ItemPage) itemPageResponse {
	items := p.Items
	if items == nil {
		items = []*domain.Item{}
	}
	return itemPageResponse{Total: p.Total, Page: p.Page, Limit: p.Limit, Items: items}
}
