package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	product := &entity.Product{}
	var category sql.NullString

	query := `SELECT id, name, price, category FROM products WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&product.ID, &product.Name, &product.Price, &category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewPersistenceError("get product", err)
	}

	product.Category = category.String
	return product, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (name, price, category) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Price, nullable(product.Category))
	if err != nil {
		return nil, apperr.NewPersistenceError("create product", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.NewPersistenceError("create product", err)
	}

	product.ID = int(id)
	return product, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, price = ?, category = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, product.Name, product.Price, nullable(product.Category), product.ID); err != nil {
		return nil, apperr.NewPersistenceError("update product", err)
	}
	return r.GetProductByID(ctx, product.ID)
}

func (r *ProductRepository) GetProducts(ctx context.Context) ([]*entity.Product, error) {
	return r.queryProducts(ctx, `SELECT id, name, price, category FROM products`)
}

func (r *ProductRepository) GetProductsByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	query := `SELECT id, name, price, category FROM products WHERE category = ?`
	return r.queryProducts(ctx, query, category)
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.NewPersistenceError("list products", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var product entity.Product
		var category sql.NullString
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &category); err != nil {
			return nil, apperr.NewPersistenceError("scan product", err)
		}
		product.Category = category.String
		products = append(products, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewPersistenceError("list products", err)
	}

	return products, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
