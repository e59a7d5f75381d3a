package router

import "github.com/labstack/echo/v4"

// registerCustomer mounts the signed-in customer routes: coupons and
// payments.
func registerCustomer(api *echo.Group, h Handlers, protect echo.MiddlewareFunc) {
	coupons := api.Group("/coupons", protect)
	coupons.GET("", h.Coupons.Get)
	coupons.POST("/validate", h.Coupons.Validate)

	payments := api.Group("/payments", protect)
	payments.POST("/create-checkout-session", h.Payments.CreateCheckoutSession)
	payments.POST("/checkout-success", h.Payments.CheckoutSuccess)
}
