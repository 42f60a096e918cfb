package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/service"
)

type UserHandler struct {
	userService  *service.UserService
	tokenService *service.TokenService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(userService *service.UserService, tokenService *service.TokenService) *UserHandler {
	return &UserHandler{userService: userService, tokenService: tokenService}
}

type credentialsRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates a new user --> POST /users
func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	req := credentialsRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Register(ctx, req.FirstName, req.LastName, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	token, err := h.tokenService.Issue(user)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

// Authenticate verifies credentials and issues a token --> POST /users/authenticate
func (h *UserHandler) Authenticate(c echo.Context) error {
	ctx := c.Request().Context()

	req := credentialsRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Authenticate(ctx, req.FirstName, req.LastName, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	token, err := h.tokenService.Issue(user)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

// ListUsers retrieves all users --> GET /users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserByID retrieves a user by ID --> GET /users/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	user, err := h.userService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user --> DELETE /users/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	user, err := h.userService.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, user)
}
