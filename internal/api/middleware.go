package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"storefront-service/internal/service"
)

// RequireToken gates protected routes. It validates the bearer token with
// the token service's secret and claims type; a missing, malformed or
// badly signed token short-circuits with 401 before any handler runs.
func RequireToken(tokens *service.TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    tokens.Secret(),
		SigningMethod: echojwt.AlgorithmHS256,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.UserClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or missing token"})
		},
	})
}
