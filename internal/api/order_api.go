package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder opens an order --> POST /orders
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	req := struct {
		UserID int    `json:"user_id"`
		Status string `json:"status"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), req.UserID, req.Status)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

// ListOrders retrieves all orders --> GET /orders
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrderByID retrieves an order by ID --> GET /orders/:id
func (h *OrderHandler) GetOrderByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.GetOrderByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// DeleteOrder removes an order and its line items --> DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.DeleteOrder(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// AddProduct attaches a line item to an order --> POST /orders/:id/products
func (h *OrderHandler) AddProduct(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	req := struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	item, err := h.orderService.AddProduct(c.Request().Context(), orderID, req.ProductID, req.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, item)
}

// UpdateStatus writes an order's status --> PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	req := struct {
		Status string `json:"status"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// CurrentOrder returns the user's open order --> GET /orders/user/:userId/current
// A user with no active order gets 200 with a null body, not an error.
func (h *OrderHandler) CurrentOrder(c echo.Context) error {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.CurrentOrderByUser(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// CompletedOrders returns the user's completed orders, most recent first
// --> GET /orders/user/:userId/completed
func (h *OrderHandler) CompletedOrders(c echo.Context) error {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	orders, err := h.orderService.CompletedOrdersByUser(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}
