package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendhub/vending-machine/internal/core/ports"
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=buyer seller"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

type userResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	DepositCents int    `json:"deposit_cents"`
	CreatedAt    string `json:"created_at"`
}

func toUserResponse(u ports.UserDetail) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		DepositCents: u.DepositCents,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/users — open registration.
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createUserResponse{ID: id})
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get an account by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id (UUID)"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}
