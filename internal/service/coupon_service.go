package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

// CouponService answers coupon queries for the signed-in customer.
type CouponService struct {
	coupons CouponStore
	now     func() time.Time
}

func NewCouponService(coupons CouponStore) *CouponService {
	return &CouponService{coupons: coupons, now: time.Now}
}

// GetActive returns the user's active coupon, or nil when there is none.
func (s *CouponService) GetActive(ctx context.Context, userID uint64) (*model.Coupon, error) {
	c, err := s.coupons.FindActiveByUser(ctx, userID)
	if errors.Is(err, repository.ErrCouponNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	return &c, nil
}

// Validate checks that code names an unexpired active coupon of the user.
// An expired coupon is deactivated on the way out.
func (s *CouponService) Validate(ctx context.Context, userID uint64, code string) (model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Coupon{}, invalid("code is required")
	}
	c, err := s.coupons.FindActiveByCode(ctx, userID, code)
	if errors.Is(err, repository.ErrCouponNotFound) {
		return model.Coupon{}, ErrCouponNotFound
	}
	if err != nil {
		return model.Coupon{}, fmt.Errorf("load coupon: %w", err)
	}
	if c.Expired(s.now()) {
		if err := s.coupons.Deactivate(ctx, userID, code); err != nil {
			return model.Coupon{}, fmt.Errorf("deactivate expired coupon: %w", err)
		}
		return model.Coupon{}, ErrCouponExpired
	}
	return c, nil
}
