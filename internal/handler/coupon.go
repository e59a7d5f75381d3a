package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/service"
)

// Coupons is implemented by service.CouponService.
type Coupons interface {
	GetActive(ctx context.Context, userID uint64) (*model.Coupon, error)
	Validate(ctx context.Context, userID uint64, code string) (model.Coupon, error)
}

// CouponHandler serves /api/coupons.
type CouponHandler struct {
	coupons Coupons
}

func NewCouponHandler(coupons Coupons) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Get returns the caller's active coupon or null.
func (h *CouponHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return fail(c, service.ErrUnauthenticated)
	}
	coupon, err := h.coupons.GetActive(c.Request().Context(), uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) Validate(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return fail(c, service.ErrUnauthenticated)
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	coupon, err := h.coupons.Validate(c.Request().Context(), uid, req.Code)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":            "coupon is valid",
		"code":               coupon.Code,
		"discountPercentage": coupon.DiscountPercentage,
	})
}
