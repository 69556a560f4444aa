package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendhub/vending-machine/internal/api/metrics"
	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

// VendingHandler exposes the coin-operated purchase flow: deposits, deposit
// reset and buying products.
type VendingHandler struct {
	service ports.VendingService
}

func NewVendingHandler(service ports.VendingService) *VendingHandler {
	return &VendingHandler{service: service}
}

type depositRequest struct {
	AmountCents int `json:"amount_cents" validate:"required,gt=0"`
}

type buyRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// Deposit handles POST /v1/deposit — a buyer inserts one coin.
//
// @Summary      Deposit a coin
// @Tags         vending
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "UUIDv4 idempotency key"
// @Param        body             body      depositRequest  true   "Coin denomination in cents"
// @Success      200  {object}  ports.DepositResult
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/deposit [post]
func (h *VendingHandler) Deposit(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Deposit(c.Request().Context(), ports.DepositInput{
		UserID:      userID,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		return err
	}

	metrics.DepositsTotal.WithLabelValues(strconv.Itoa(req.AmountCents)).Inc()
	return c.JSON(http.StatusOK, result)
}

// Reset handles POST /v1/reset — return the buyer's deposit as coins.
//
// @Summary      Reset deposit
// @Tags         vending
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ResetResult
// @Failure      403  {object}  map[string]string
// @Router       /v1/reset [post]
func (h *VendingHandler) Reset(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.ResetDeposit(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	countChange(result.Change)
	return c.JSON(http.StatusOK, result)
}

// Buy handles POST /v1/buy — purchase a quantity of one product with the
// buyer's current deposit.
//
// @Summary      Buy a product
// @Tags         vending
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string      false  "UUIDv4 idempotency key"
// @Param        body             body      buyRequest  true   "Product and quantity"
// @Success      200  {object}  ports.PurchaseResult
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/buy [post]
func (h *VendingHandler) Buy(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req buyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.service.Purchase(c.Request().Context(), ports.PurchaseInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	metrics.PurchaseDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(purchaseFailureReason(err)).Inc()
		return err
	}

	metrics.PurchasesTotal.WithLabelValues("success").Inc()
	metrics.ProductEventsTotal.WithLabelValues(string(domain.EventWithdraw)).Inc()
	countChange(result.Change)
	return c.JSON(http.StatusOK, result)
}

func countChange(change []domain.Coin) {
	for _, coin := range change {
		metrics.ChangeCoinsTotal.
			WithLabelValues(strconv.Itoa(coin.Denomination)).
			Add(float64(coin.Count))
	}
}

func purchaseFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrProductNotAvailable):
		return "out_of_stock"
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrBuyerRoleRequired):
		return "forbidden"
	default:
		return "error"
	}
}
