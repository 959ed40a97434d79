package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"app/internal/config"

	"github.com/labstack/echo/v4"
)

// AdminAPIKey は管理APIのX-API-Keyを検証するミドルウェア。
func AdminAPIKey(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminAPIKey)) != 1 {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
