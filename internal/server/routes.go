package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
}

// /api 以下は全部ログイン必須
func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	cart := api.Group("/cart")
	cart.Use(middleware.AuthJWT(cfg))
	cart.Use(middleware.TokenVersionGuard(userRepo))
	h.Cart.RegisterRoutes(cart)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthJWT(cfg))
	orders.Use(middleware.TokenVersionGuard(userRepo))
	h.Order.RegisterRoutes(orders)
	h.AdminOrder.RegisterRoutes(orders)
}
