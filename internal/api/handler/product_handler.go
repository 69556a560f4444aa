package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendhub/vending-machine/internal/api/metrics"
	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

// ProductHandler handles seller-facing product management.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

type createProductRequest struct {
	Name            string `json:"name" validate:"required"`
	CostCents       int    `json:"cost_cents" validate:"required,gt=0"`
	AmountAvailable int    `json:"amount_available" validate:"gte=0"`
}

type createProductResponse struct {
	ID string `json:"id"`
}

type updateProductRequest struct {
	Name            *string `json:"name,omitempty"`
	CostCents       *int    `json:"cost_cents,omitempty" validate:"omitempty,gt=0"`
	AmountAvailable *int    `json:"amount_available,omitempty" validate:"omitempty,gte=0"`
}

type productResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CostCents       int    `json:"cost_cents"`
	AmountAvailable int    `json:"amount_available"`
	SellerID        string `json:"seller_id"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toProductResponse(p ports.ProductDetail) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		CostCents:       p.CostCents,
		AmountAvailable: p.AmountAvailable,
		SellerID:        p.SellerID,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toProductResponses(details []ports.ProductDetail) []productResponse {
	out := make([]productResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toProductResponse(d))
	}
	return out
}

// Create handles POST /v1/products (seller only).
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "UUIDv4 idempotency key"
// @Param        body             body      createProductRequest  true   "Product details"
// @Success      201  {object}  createProductResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	sellerID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.CreateProduct(c.Request().Context(), ports.CreateProductInput{
		Name:            req.Name,
		CostCents:       req.CostCents,
		AmountAvailable: req.AmountAvailable,
		SellerID:        sellerID,
	})
	if err != nil {
		return err
	}

	if req.AmountAvailable > 0 {
		metrics.ProductEventsTotal.WithLabelValues(string(domain.EventTopUp)).Inc()
	}
	return c.JSON(http.StatusCreated, createProductResponse{ID: id})
}

// Get handles GET /v1/products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id (UUID)"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(*product))
}

// List handles GET /v1/products. The optional seller_id query parameter
// restricts the listing to one seller's catalog.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        seller_id  query     string  false  "Filter by seller id"
// @Success      200  {array}  productResponse
// @Router       /v1/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if sellerID := c.QueryParam("seller_id"); sellerID != "" {
		details, err := h.service.ListBySeller(ctx, sellerID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toProductResponses(details))
	}

	details, err := h.service.ListProducts(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(details))
}

// Update handles PUT /v1/products/:id (owning seller only).
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id (UUID)"
// @Param        body  body      updateProductRequest  true  "Fields to update"
// @Success      204   "no content"
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	sellerID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.UpdateProduct(c.Request().Context(), ports.UpdateProductInput{
		ProductID:       c.Param("id"),
		SellerID:        sellerID,
		Name:            req.Name,
		CostCents:       req.CostCents,
		AmountAvailable: req.AmountAvailable,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/products/:id (owning seller only).
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id  path  string  true  "Product id (UUID)"
// @Success      204  "no content"
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	sellerID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id"), sellerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
