package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
	"storefront-service/internal/service"
)

// In-memory repositories backing the handler tests. The services under the
// handlers are real; only the store is faked.

type memUserRepo struct {
	nextID int
	users  []*entity.User
}

func (r *memUserRepo) GetUserByID(_ context.Context, id int) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			out := *u
			out.PasswordHash = ""
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *memUserRepo) GetUsers(_ context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		c.PasswordHash = ""
		out = append(out, &c)
	}
	return out, nil
}

func (r *memUserRepo) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users = append(r.users, &stored)
	return user, nil
}

func (r *memUserRepo) GetUserByName(_ context.Context, firstName, lastName string) (*entity.User, error) {
	for _, u := range r.users {
		if u.FirstName == firstName && u.LastName == lastName {
			out := *u
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *memUserRepo) DeleteUser(_ context.Context, id int) (*entity.User, error) {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			out := *u
			out.PasswordHash = ""
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

type memOrderRepo struct {
	nextOrderID int
	nextItemID  int
	orders      map[int]*entity.Order
	items       []*entity.OrderProduct
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[int]*entity.Order)}
}

func (r *memOrderRepo) GetOrderByID(_ context.Context, id int) (*entity.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r *memOrderRepo) GetOrders(_ context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		c := *o
		out = append(out, &c)
	}
	return out, nil
}

func (r *memOrderRepo) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	r.nextOrderID++
	order.ID = r.nextOrderID
	stored := *order
	r.orders[order.ID] = &stored
	return order, nil
}

func (r *memOrderRepo) DeleteOrder(_ context.Context, id int) (*entity.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	delete(r.orders, id)
	return o, nil
}

func (r *memOrderRepo) AddProduct(_ context.Context, orderID, productID, quantity int) (*entity.OrderProduct, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if o.Status != entity.StatusActive {
		return nil, apperr.NewStateConflictError(orderID, o.Status)
	}
	r.nextItemID++
	item := &entity.OrderProduct{ID: r.nextItemID, OrderID: orderID, ProductID: productID, Quantity: quantity}
	r.items = append(r.items, item)
	return item, nil
}

func (r *memOrderRepo) GetCurrentOrderByUser(_ context.Context, userID int) (*entity.Order, error) {
	var current *entity.Order
	for _, o := range r.orders {
		if o.UserID == userID && o.Status == entity.StatusActive {
			if current == nil || o.ID > current.ID {
				current = o
			}
		}
	}
	if current == nil {
		return nil, nil
	}
	out := *current
	return &out, nil
}

func (r *memOrderRepo) GetCompletedOrdersByUser(_ context.Context, userID int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if o.UserID == userID && o.Status == entity.StatusComplete {
			c := *o
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memOrderRepo) UpdateOrderStatus(_ context.Context, id int, status string) (*entity.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	o.Status = status
	out := *o
	return &out, nil
}

type testServer struct {
	e      *echo.Echo
	tokens *service.TokenService
}

func newTestServer() *testServer {
	users := &memUserRepo{}
	orders := newMemOrderRepo()

	userService := service.NewUserService(users, "test-pepper", bcrypt.MinCost)
	tokenService := service.NewTokenService([]byte("test-secret"), time.Hour)
	orderService := service.NewOrderService(orders, nil)

	userHandler := NewUserHandler(userService, tokenService)
	orderHandler := NewOrderHandler(orderService)

	e := echo.New()
	requireToken := RequireToken(tokenService)

	e.POST("/users", userHandler.Register)
	e.POST("/users/authenticate", userHandler.Authenticate)
	e.GET("/users", userHandler.ListUsers, requireToken)
	e.GET("/users/:id", userHandler.GetUserByID, requireToken)
	e.POST("/orders", orderHandler.CreateOrder, requireToken)
	e.GET("/orders/:id", orderHandler.GetOrderByID, requireToken)
	e.POST("/orders/:id/products", orderHandler.AddProduct, requireToken)
	e.PATCH("/orders/:id/status", orderHandler.UpdateStatus, requireToken)
	e.GET("/orders/user/:userId/current", orderHandler.CurrentOrder, requireToken)
	e.GET("/orders/user/:userId/completed", orderHandler.CompletedOrders, requireToken)

	return &testServer{e: e, tokens: tokenService}
}

func (s *testServer) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) tokenFor(t *testing.T, user *entity.User) string {
	t.Helper()
	token, err := s.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	s := newTestServer()

	rec := s.request(http.MethodGet, "/orders/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteWithForeignToken(t *testing.T) {
	s := newTestServer()

	foreign := service.NewTokenService([]byte("other-secret"), time.Hour)
	token, err := foreign.Issue(&entity.User{ID: 1, FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	rec := s.request(http.MethodGet, "/orders/1", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterReturnsUserAndToken(t *testing.T) {
	s := newTestServer()

	rec := s.request(http.MethodPost, "/users", `{"first_name":"Ann","last_name":"Lee","password":"pw1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User  entity.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Ann", resp.User.FirstName)
	assert.NotContains(t, rec.Body.String(), "password")

	claims, err := s.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegisterMissingFields(t *testing.T) {
	s := newTestServer()

	rec := s.request(http.MethodPost, "/users", `{"first_name":"Ann"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticateSuccessAndFailure(t *testing.T) {
	s := newTestServer()

	rec := s.request(http.MethodPost, "/users", `{"first_name":"Ann","last_name":"Lee","password":"pw1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.request(http.MethodPost, "/users/authenticate", `{"first_name":"Ann","last_name":"Lee","password":"pw1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")

	rec = s.request(http.MethodPost, "/users/authenticate", `{"first_name":"Ann","last_name":"Lee","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateUnknownUserIs401Not500(t *testing.T) {
	s := newTestServer()

	rec := s.request(http.MethodPost, "/users/authenticate", `{"first_name":"No","last_name":"Body","password":"pw"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer()

	token := s.tokenFor(t, &entity.User{ID: 1, FirstName: "Ann", LastName: "Lee"})

	// Create an order with the default status.
	rec := s.request(http.MethodPost, "/orders", `{"user_id":1}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order entity.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, entity.StatusActive, order.Status)

	// Attach a line item.
	rec = s.request(http.MethodPost, "/orders/1/products", `{"product_id":42,"quantity":3}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var item entity.OrderProduct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, order.ID, item.OrderID)
	assert.Equal(t, 3, item.Quantity)

	// Complete the order, then a second attach must conflict.
	rec = s.request(http.MethodPatch, "/orders/1/status", `{"status":"complete"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/orders/1/products", `{"product_id":43,"quantity":1}`, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddProductValidationOverHTTP(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, &entity.User{ID: 1})

	rec := s.request(http.MethodPost, "/orders", `{"user_id":1}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.request(http.MethodPost, "/orders/1/products", `{"product_id":42,"quantity":0}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentOrderNoneIsNullNotError(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, &entity.User{ID: 1})

	rec := s.request(http.MethodGet, "/orders/user/1/current", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestGetMissingOrderIs404(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, &entity.User{ID: 1})

	rec := s.request(http.MethodGet, "/orders/99", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
