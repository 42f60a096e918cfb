package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"storefront-service/internal/api"
	"storefront-service/internal/config"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/migrations"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				return db, nil
			}
		}
		log.Printf("Retry %d: failed to connect to DB: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB after retries: %v", err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := connectDB(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrations.Apply(context.Background(), db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	kafkaWriter := config.NewKafkaWriter("order-events")

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)

	userService := service.NewUserService(userRepo, cfg.BcryptPepper, cfg.BcryptCost)
	tokenService := service.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	orderService := service.NewOrderService(orderRepo, kafkaWriter)
	productService := service.NewProductService(productRepo, rdb)

	userHandler := api.NewUserHandler(userService, tokenService)
	orderHandler := api.NewOrderHandler(orderService)
	productHandler := api.NewProductHandler(productService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     60,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))
	e.Use(requestTimeout(cfg.RequestTimeout))

	requireToken := api.RequireToken(tokenService)

	// Public routes.
	e.POST("/users", userHandler.Register)
	e.POST("/users/authenticate", userHandler.Authenticate)
	e.GET("/products", productHandler.ListProducts)
	e.GET("/products/:id", productHandler.GetProductByID)
	e.GET("/products/category/:category", productHandler.ListByCategory)

	// Protected routes.
	e.GET("/users", userHandler.ListUsers, requireToken)
	e.GET("/users/:id", userHandler.GetUserByID, requireToken)
	e.DELETE("/users/:id", userHandler.DeleteUser, requireToken)
	e.POST("/products", productHandler.CreateProduct, requireToken)
	e.PUT("/products/:id", productHandler.UpdateProduct, requireToken)
	e.GET("/orders", orderHandler.ListOrders, requireToken)
	e.GET("/orders/:id", orderHandler.GetOrderByID, requireToken)
	e.POST("/orders", orderHandler.CreateOrder, requireToken)
	e.DELETE("/orders/:id", orderHandler.DeleteOrder, requireToken)
	e.POST("/orders/:id/products", orderHandler.AddProduct, requireToken)
	e.PATCH("/orders/:id/status", orderHandler.UpdateStatus, requireToken)
	e.GET("/orders/user/:userId/current", orderHandler.CurrentOrder, requireToken)
	e.GET("/orders/user/:userId/completed", orderHandler.CompletedOrders, requireToken)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "storefront-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(cfg.HTTPAddr))
}

// requestTimeout bounds every request context so no store call can hang
// past the deadline.
func requestTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
