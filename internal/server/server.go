package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoを組み立てて返す。
func New(
	cfg config.Config,
	sessionH *handler.SessionHandler,
	productH *handler.ProductHandler,
	adminProductH *handler.AdminProductHandler,
	cartH *handler.CartHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())

	//CORS（フロントのみ許可）
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FEURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, "X-Session-ID", "X-API-Key"},
	}))

	sessionH.RegisterRoutes(e)
	productH.RegisterRoutes(e)
	adminProductH.RegisterRoutes(e, cfg)
	cartH.RegisterRoutes(e)

	return e
}

// Start はサーバーを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
