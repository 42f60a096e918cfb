// Package api holds the echo handlers. They parse requests, call the
// services and serialise results; no domain rules live here.
package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront-service/internal/apperr"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// errorJSON maps the error taxonomy onto HTTP status codes. Store error
// text is logged, never returned to the client.
func errorJSON(c echo.Context, err error) error {
	switch {
	case apperr.IsValidationError(err):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperr.IsNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case apperr.IsStateConflict(err):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case apperr.IsAuthFailed(err):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
