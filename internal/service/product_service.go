package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

const productCacheTTL = time.Minute

// ProductRepo is the slice of the product repository the service needs.
type ProductRepo interface {
	GetProductByID(ctx context.Context, id int) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	GetProducts(ctx context.Context) ([]*entity.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]*entity.Product, error)
}

// ProductService is a plain record store over the catalog, with a
// read-through Redis cache on single-product fetches.
type ProductService struct {
	productRepo ProductRepo
	rdb         *redis.Client
}

// NewProductService creates a new instance of ProductService. rdb may be
// nil, in which case reads always hit the store.
func NewProductService(productRepo ProductRepo, rdb *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, rdb: rdb}
}

func (p *ProductService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	switch {
	case product.Name == "":
		return nil, apperr.RequiredError("name")
	case product.Price <= 0:
		return nil, apperr.NewValidationError("price", "must be positive")
	}

	created, err := p.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}

	return created, nil
}

// GetProductByID reads from cache first and falls back to the store,
// filling the cache on the way out.
func (p *ProductService) GetProductByID(ctx context.Context, productID int) (*entity.Product, error) {
	if cached := p.cacheGet(ctx, productID); cached != nil {
		return cached, nil
	}

	product, err := p.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting product by ID %d", productID)
		}
		return nil, err
	}

	p.cacheSet(ctx, product)
	return product, nil
}

func (p *ProductService) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	products, err := p.productRepo.GetProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}

	return products, nil
}

func (p *ProductService) ListProductsByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	if category == "" {
		return nil, apperr.RequiredError("category")
	}

	products, err := p.productRepo.GetProductsByCategory(ctx, category)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing products in category %q", category)
		return nil, err
	}

	return products, nil
}

func (p *ProductService) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	switch {
	case product.ID == 0:
		return nil, apperr.RequiredError("id")
	case product.Name == "":
		return nil, apperr.RequiredError("name")
	case product.Price <= 0:
		return nil, apperr.NewValidationError("price", "must be positive")
	}

	// The row must exist before the blind UPDATE, otherwise a write to a
	// missing id would report success.
	if _, err := p.productRepo.GetProductByID(ctx, product.ID); err != nil {
		return nil, err
	}

	updated, err := p.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating product %d", product.ID)
		return nil, err
	}

	p.cacheSet(ctx, updated)
	return updated, nil
}

func (p *ProductService) cacheGet(ctx context.Context, productID int) *entity.Product {
	if p.rdb == nil {
		return nil
	}

	key := productCacheKey(productID)
	cached, err := p.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msgf("Error getting product %d from cache", productID)
		}
		return nil
	}

	var product entity.Product
	if err := json.Unmarshal([]byte(cached), &product); err != nil {
		logger.Error().Err(err).Msgf("Error unmarshalling cached product %d", productID)
		return nil
	}

	return &product
}

func (p *ProductService) cacheSet(ctx context.Context, product *entity.Product) {
	if p.rdb == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling product %d for cache", product.ID)
		return
	}

	if err := p.rdb.Set(ctx, productCacheKey(product.ID), data, productCacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting product %d in cache", product.ID)
	}
}

func productCacheKey(productID int) string {
	return fmt.Sprintf("product:%d", productID)
}
