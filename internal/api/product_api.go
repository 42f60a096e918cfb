package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/entity"
	"storefront-service/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new instance of ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct adds a product to the catalog --> POST /products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.productService.CreateProduct(c.Request().Context(), &product)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// ListProducts retrieves the catalog --> GET /products
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProductByID retrieves a product --> GET /products/:id
func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	product, err := h.productService.GetProductByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

// ListByCategory filters the catalog --> GET /products/category/:category
func (h *ProductHandler) ListByCategory(c echo.Context) error {
	products, err := h.productService.ListProductsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// UpdateProduct rewrites a product record --> PUT /products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	product.ID = id

	updated, err := h.productService.UpdateProduct(c.Request().Context(), &product)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}
