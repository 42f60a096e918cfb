package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	order := &entity.Order{}
	query := `SELECT id, user_id, status FROM orders WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&order.ID, &order.UserID, &order.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewPersistenceError("get order", err)
	}

	return order, nil
}

func (r *OrderRepository) GetOrders(ctx context.Context) ([]*entity.Order, error) {
	return r.queryOrders(ctx, `SELECT id, user_id, status FROM orders`)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	query := `INSERT INTO orders (user_id, status) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, order.UserID, order.Status)
	if err != nil {
		return nil, apperr.NewPersistenceError("create order", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.NewPersistenceError("create order", err)
	}

	order.ID = int(id)
	return order, nil
}

// DeleteOrder removes the order and returns the deleted record. Line items
// go with it through the FK cascade.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id int) (*entity.Order, error) {
	order, err := r.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `DELETE FROM orders WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return nil, apperr.NewPersistenceError("delete order", err)
	}

	return order, nil
}

// AddProduct attaches a line item to an order. The order row is locked for
// the duration of the status check so that a concurrent status change
// cannot race past it: load FOR UPDATE, check status == active, insert,
// all inside one transaction.
func (r *OrderRepository) AddProduct(ctx context.Context, orderID, productID, quantity int) (*entity.OrderProduct, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.NewPersistenceError("begin add product", err)
	}

	order := &entity.Order{}
	lockQuery := `SELECT id, user_id, status FROM orders WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, lockQuery, orderID).Scan(&order.ID, &order.UserID, &order.Status)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, apperr.NewPersistenceError("lock order", err)
	}

	if order.Status != entity.StatusActive {
		tx.Rollback()
		return nil, apperr.NewStateConflictError(orderID, order.Status)
	}

	insertQuery := `INSERT INTO order_products (order_id, product_id, quantity) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, insertQuery, orderID, productID, quantity)
	if err != nil {
		tx.Rollback()
		return nil, apperr.NewPersistenceError("insert line item", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, apperr.NewPersistenceError("insert line item", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.NewPersistenceError("commit add product", err)
	}

	return &entity.OrderProduct{
		ID:        int(id),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	}, nil
}

// GetCurrentOrderByUser returns the most recently created active order for
// the user, or nil if there is none. Absence is not an error here.
func (r *OrderRepository) GetCurrentOrderByUser(ctx context.Context, userID int) (*entity.Order, error) {
	order := &entity.Order{}
	query := `SELECT id, user_id, status FROM orders WHERE user_id = ? AND status = ? ORDER BY id DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, userID, entity.StatusActive).Scan(&order.ID, &order.UserID, &order.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.NewPersistenceError("get current order", err)
	}

	return order, nil
}

func (r *OrderRepository) GetCompletedOrdersByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	query := `SELECT id, user_id, status FROM orders WHERE user_id = ? AND status = ? ORDER BY id DESC`
	return r.queryOrders(ctx, query, userID, entity.StatusComplete)
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int, status string) (*entity.Order, error) {
	query := `UPDATE orders SET status = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return nil, apperr.NewPersistenceError("update order status", err)
	}

	// RowsAffected cannot distinguish a missing row from a no-op write of
	// the same status, so the row is read back; a missing order surfaces
	// as ErrNotFound here.
	return r.GetOrderByID(ctx, id)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.NewPersistenceError("list orders", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		var order entity.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status); err != nil {
			return nil, apperr.NewPersistenceError("scan order", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewPersistenceError("list orders", err)
	}

	return orders, nil
}
