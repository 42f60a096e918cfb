package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

// OrderRepo is the slice of the order repository the service needs.
type OrderRepo interface {
	GetOrderByID(ctx context.Context, id int) (*entity.Order, error)
	GetOrders(ctx context.Context) ([]*entity.Order, error)
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	DeleteOrder(ctx context.Context, id int) (*entity.Order, error)
	AddProduct(ctx context.Context, orderID, productID, quantity int) (*entity.OrderProduct, error)
	GetCurrentOrderByUser(ctx context.Context, userID int) (*entity.Order, error)
	GetCompletedOrdersByUser(ctx context.Context, userID int) ([]*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status string) (*entity.Order, error)
}

// OrderService manages orders and their line items under the
// active/complete status discipline.
type OrderService struct {
	orderRepo   OrderRepo
	kafkaWriter *kafka.Writer
}

// NewOrderService creates a new instance of OrderService. kafkaWriter may
// be nil, in which case lifecycle events are not published.
func NewOrderService(orderRepo OrderRepo, kafkaWriter *kafka.Writer) *OrderService {
	return &OrderService{orderRepo: orderRepo, kafkaWriter: kafkaWriter}
}

// CreateOrder opens an order for a user. An empty status defaults to
// active; other values are stored as given.
func (s *OrderService) CreateOrder(ctx context.Context, userID int, status string) (*entity.Order, error) {
	if userID == 0 {
		return nil, apperr.RequiredError("user_id")
	}
	if status == "" {
		status = entity.StatusActive
	}

	order, err := s.orderRepo.CreateOrder(ctx, &entity.Order{UserID: userID, Status: status})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	s.publishOrderEvent(ctx, order, "created")
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting order by ID %d", id)
		}
		return nil, err
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*entity.Order, error) {
	orders, err := s.orderRepo.GetOrders(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing orders")
		return nil, err
	}

	return orders, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int) (*entity.Order, error) {
	order, err := s.orderRepo.DeleteOrder(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error deleting order %d", id)
		}
		return nil, err
	}

	s.publishOrderEvent(ctx, order, "deleted")
	return order, nil
}

// AddProduct attaches a product with a quantity to an active order. The
// status check and the insert run atomically in the repository; a
// non-active order comes back as a StateConflictError.
func (s *OrderService) AddProduct(ctx context.Context, orderID, productID, quantity int) (*entity.OrderProduct, error) {
	switch {
	case orderID == 0:
		return nil, apperr.RequiredError("order_id")
	case productID == 0:
		return nil, apperr.RequiredError("product_id")
	case quantity < 1:
		return nil, apperr.NewValidationError("quantity", "must be a positive integer")
	}

	item, err := s.orderRepo.AddProduct(ctx, orderID, productID, quantity)
	if err != nil {
		if apperr.IsStateConflict(err) {
			logger.Warn().Msgf("Rejected product %d for non-active order %d", productID, orderID)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error adding product %d to order %d", productID, orderID)
		}
		return nil, err
	}

	return item, nil
}

// CurrentOrderByUser returns the user's open order, or nil without error
// when the user has none.
func (s *OrderService) CurrentOrderByUser(ctx context.Context, userID int) (*entity.Order, error) {
	if userID == 0 {
		return nil, apperr.RequiredError("user_id")
	}

	order, err := s.orderRepo.GetCurrentOrderByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting current order for user %d", userID)
		return nil, err
	}

	return order, nil
}

func (s *OrderService) CompletedOrdersByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	if userID == 0 {
		return nil, apperr.RequiredError("user_id")
	}

	orders, err := s.orderRepo.GetCompletedOrdersByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting completed orders for user %d", userID)
		return nil, err
	}

	return orders, nil
}

// UpdateOrderStatus is the generic status write. It attaches no business
// rules; whatever transition the caller asks for is stored.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, status string) (*entity.Order, error) {
	if status == "" {
		return nil, apperr.RequiredError("status")
	}

	order, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error updating status of order %d", orderID)
		}
		return nil, err
	}

	s.publishOrderEvent(ctx, order, "updated")
	return order, nil
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, key string) {
	if s.kafkaWriter == nil {
		return
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling order %d event", order.ID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", key, order.ID)),
		Value: orderJSON,
	}

	// Events are best effort; a broker outage must not fail the request
	// that already committed.
	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order-%s event for order %d", key, order.ID)
	}
}
