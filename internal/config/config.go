package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config carries everything the service reads from the environment. The
// token secret and password pepper are injected into the services at
// construction time; nothing inside internal/ reads the environment again.
type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr string

	TokenSecret []byte
	// TokenTTL of zero issues tokens without an expiry claim.
	TokenTTL time.Duration

	BcryptPepper string
	BcryptCost   int
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		DBHost:         getenv("DB_HOST", "127.0.0.1"),
		DBPort:         getenv("DB_PORT", "3306"),
		DBUser:         getenv("DB_USER", "root"),
		DBPass:         os.Getenv("DB_PASS"),
		DBName:         getenv("DB_NAME", "storefront"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		TokenSecret:    []byte(os.Getenv("TOKEN_SECRET")),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		BcryptPepper:   os.Getenv("BCRYPT_PEPPER"),
		BcryptCost:     getInt("BCRYPT_COST", bcrypt.DefaultCost),
	}

	if len(cfg.TokenSecret) == 0 {
		return nil, fmt.Errorf("TOKEN_SECRET must be set")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST %d out of range", cfg.BcryptCost)
	}

	return cfg, nil
}

// DSN returns the MySQL connection string. parseTime is not needed, no
// column in the schema is temporal.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
