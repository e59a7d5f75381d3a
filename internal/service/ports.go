// Package service holds the storefront's business logic: token lifecycle,
// authentication, the featured-products cache-aside layer, checkout and
// coupons. Services depend on the small interfaces below; the MySQL
// repositories, the Redis cache handle and the Stripe gateway satisfy them.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/queue"
)

// Logger is satisfied by the gommon logger echo uses.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Cache is the session cache. Get reports a miss with found == false and a
// nil error; any non-nil error means the cache could not answer.
type Cache interface {
	Get(ctx context.Context, key string) (val string, found bool, err error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type ProductStore interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	ListFeatured(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	Sample(ctx context.Context, n int) ([]model.Product, error)
	GetByID(ctx context.Context, id uint64) (model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	ToggleFeatured(ctx context.Context, id uint64) (model.Product, error)
	Delete(ctx context.Context, id uint64) error
}

type CouponStore interface {
	FindActiveByCode(ctx context.Context, userID uint64, code string) (model.Coupon, error)
	FindActiveByUser(ctx context.Context, userID uint64) (model.Coupon, error)
	Create(ctx context.Context, c *model.Coupon) error
	Deactivate(ctx context.Context, userID uint64, code string) error
}

type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	CountBySession(ctx context.Context, sessionID string) (int, error)
}

// OrderEvents publishes order events. Implementations may fail; callers
// treat publishing as best-effort.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}
