package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/storefront/internal/model"
)

// ErrCouponNotFound is returned when the user has no matching active coupon.
var ErrCouponNotFound = errors.New("coupon not found")

const couponColumns = "id,code,discount_percentage,expiration_date,user_id,is_active,created_at"

// CouponRepo stores per-user discount coupons. The schema guarantees at most
// one active row per user (uq_coupons_active_user).
type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// FindActiveByCode returns the active coupon with code owned by userID.
// Expiry is not checked here; callers decide what an expired coupon means.
func (r *CouponRepo) FindActiveByCode(ctx context.Context, userID uint64, code string) (model.Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE user_id = ? AND code = ? AND is_active = 1 LIMIT 1",
		userID, code)
	return scanCoupon(row)
}

// FindActiveByUser returns the user's active coupon, if any.
func (r *CouponRepo) FindActiveByUser(ctx context.Context, userID uint64) (model.Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE user_id = ? AND is_active = 1 LIMIT 1", userID)
	return scanCoupon(row)
}

// Create inserts an active coupon. A second active coupon for the same user,
// or a reused code, is rejected with ErrConflict.
func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	const q = "INSERT INTO coupons (code, discount_percentage, expiration_date, user_id, is_active) VALUES (?,?,?,?,1)"
	res, err := r.db.ExecContext(ctx, q, c.Code, c.DiscountPercentage, c.ExpirationDate.UTC(), c.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.IsActive = true
	return nil
}

// Deactivate marks the user's coupon with code inactive. Deactivating an
// already inactive or unknown coupon is a no-op.
func (r *CouponRepo) Deactivate(ctx context.Context, userID uint64, code string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE coupons SET is_active = 0 WHERE user_id = ? AND code = ? AND is_active = 1", userID, code)
	return err
}

func scanCoupon(row *sql.Row) (model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.ExpirationDate, &c.UserID, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Coupon{}, ErrCouponNotFound
	}
	return c, err
}
