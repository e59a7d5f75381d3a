package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/service"
	"github.com/iliyamo/storefront/internal/utils"
)

// Checkout is implemented by service.CheckoutService.
type Checkout interface {
	CreateSession(ctx context.Context, userID uint64, items []service.CartItem, couponCode string) (service.CheckoutResult, error)
	FinalizeSession(ctx context.Context, callerID uint64, sessionID string) (model.Order, error)
}

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
	checkout Checkout
}

func NewPaymentHandler(checkout Checkout) *PaymentHandler {
	return &PaymentHandler{checkout: checkout}
}

type checkoutReq struct {
	Products   []service.CartItem `json:"products"`
	CouponCode string             `json:"couponCode"`
}

type checkoutSuccessReq struct {
	SessionID string `json:"sessionId"`
}

// CreateCheckoutSession answers {id, url, totalAmount}, totalAmount in dollars.
func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return fail(c, service.ErrUnauthenticated)
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res, err := h.checkout.CreateSession(c.Request().Context(), uid, req.Products, req.CouponCode)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":          res.SessionID,
		"url":         res.URL,
		"totalAmount": utils.CentsToDollars(res.TotalCents),
	})
}

// CheckoutSuccess finalizes one of the caller's own sessions.
func (h *PaymentHandler) CheckoutSuccess(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return fail(c, service.ErrUnauthenticated)
	}
	var req checkoutSuccessReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	order, err := h.checkout.FinalizeSession(c.Request().Context(), uid, req.SessionID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "payment successful, order created, and coupon deactivated if used",
		"orderId": order.ID,
	})
}
