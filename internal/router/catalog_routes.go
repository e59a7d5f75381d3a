package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/middleware"
)

// registerCatalog mounts /api/products. Reads are public except the full
// listing; every write is admin only.
func registerCatalog(api *echo.Group, h Handlers, protect echo.MiddlewareFunc) {
	g := api.Group("/products")
	admin := []echo.MiddlewareFunc{protect, middleware.AdminRoute()}

	g.GET("", h.Products.List, admin...)
	g.GET("/featured", h.Products.Featured)
	g.GET("/category/:category", h.Products.ByCategory)
	g.GET("/recommendations", h.Products.Recommendations)
	g.POST("", h.Products.Create, admin...)
	g.PATCH("/:id", h.Products.ToggleFeatured, admin...)
	g.DELETE("/:id", h.Products.Delete, admin...)
}
