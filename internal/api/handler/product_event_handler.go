package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendhub/vending-machine/internal/core/ports"
)

// ProductEventHandler exposes the inventory audit trail.
type ProductEventHandler struct {
	service ports.ProductEventService
}

func NewProductEventHandler(service ports.ProductEventService) *ProductEventHandler {
	return &ProductEventHandler{service: service}
}

type productEventResponse struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	EventType       string `json:"event_type"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int    `json:"unit_price_cents"`
	TotalValueCents int    `json:"total_value_cents"`
	CreatedBy       string `json:"created_by"`
	CreatedAt       string `json:"created_at"`
	Description     string `json:"description"`
	PurchaseOrderID string `json:"purchase_order_id,omitempty"`
}

func toProductEventResponses(details []ports.ProductEventDetail) []productEventResponse {
	out := make([]productEventResponse, 0, len(details))
	for _, d := range details {
		out = append(out, productEventResponse{
			ID:              d.ID,
			ProductID:       d.ProductID,
			EventType:       d.EventType,
			Quantity:        d.Quantity,
			UnitPriceCents:  d.UnitPriceCents,
			TotalValueCents: d.TotalValueCents,
			CreatedBy:       d.CreatedBy,
			CreatedAt:       d.CreatedAt.UTC().Format(time.RFC3339),
			Description:     d.Description,
			PurchaseOrderID: d.PurchaseOrderID,
		})
	}
	return out
}

// List handles GET /v1/products/:id/events. Records come back newest first.
//
// @Summary      List inventory audit records for a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Product id (UUID)"
// @Param        type   query     string  false  "Filter by event type (top_up or withdraw)"
// @Param        limit  query     int     false  "Maximum number of records"
// @Success      200  {array}   productEventResponse
// @Failure      400  {object}  map[string]string
// @Router       /v1/products/{id}/events [get]
func (h *ProductEventHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = parsed
	}

	details, err := h.service.ListByProduct(
		c.Request().Context(),
		c.Param("id"),
		c.QueryParam("type"),
		limit,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toProductEventResponses(details))
}

// AuditTrail handles GET /v1/products/:id/audit — the most recent inventory
// movements for a product, newest first.
//
// @Summary      Audit trail for a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Product id (UUID)"
// @Param        limit  query     int     false  "Maximum number of records (default 20)"
// @Success      200  {array}   productEventResponse
// @Failure      400  {object}  map[string]string
// @Router       /v1/products/{id}/audit [get]
func (h *ProductEventHandler) AuditTrail(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = parsed
	}

	details, err := h.service.AuditTrail(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductEventResponses(details))
}
