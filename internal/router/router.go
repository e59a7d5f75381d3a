package router // package router registers the storefront API routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/handler"
	"github.com/iliyamo/storefront/internal/middleware"
)

// Handlers is everything Register wires into the route table.
type Handlers struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Coupons  *handler.CouponHandler
	Payments *handler.PaymentHandler
	Health   echo.HandlerFunc

	// Authenticator backs ProtectRoute.
	Authenticator middleware.Authenticator
	// AuthLimiter guards /api/auth. nil means no limit.
	AuthLimiter echo.MiddlewareFunc
}

// Register mounts the health check and every /api route on e.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	protect := middleware.ProtectRoute(h.Authenticator)
	registerAuth(api, h, protect)
	registerCatalog(api, h, protect)
	registerCustomer(api, h, protect)
}

func registerAuth(api *echo.Group, h Handlers, protect echo.MiddlewareFunc) {
	g := api.Group("/auth")
	if h.AuthLimiter != nil {
		g.Use(h.AuthLimiter)
	}
	g.POST("/signup", h.Auth.Signup)
	g.POST("/login", h.Auth.Login)
	g.POST("/logout", h.Auth.Logout)
	g.POST("/refresh-token", h.Auth.RefreshToken)
	g.GET("/profile", h.Auth.Profile, protect)
}
