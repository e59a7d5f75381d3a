// Package cache is the session cache handle shared by the token service, the
// featured-products snapshot and health checks. It wraps an optional Redis
// client: a nil client is a valid, permanently unavailable cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned (wrapped) by every operation that could not
// reach the cache server.
var ErrUnavailable = errors.New("cache unavailable")

// FeaturedProductsKey holds the JSON snapshot of every featured product.
const FeaturedProductsKey = "featured_products"

// RefreshKey is the key of the single live refresh token of a user.
func RefreshKey(userID uint64) string {
	return "refresh_token:" + strconv.FormatUint(userID, 10)
}

// Store performs single-key reads and writes with a per-call timeout.
type Store struct {
	rdb     *redis.Client
	timeout time.Duration
}

// New returns a Store over rdb. rdb may be nil. A non-positive timeout
// leaves deadlines to the caller's context.
func New(rdb *redis.Client, timeout time.Duration) *Store {
	return &Store{rdb: rdb, timeout: timeout}
}

// Available reports whether a client was configured at all. It does not
// contact the server.
func (s *Store) Available() bool {
	return s != nil && s.rdb != nil
}

// Client exposes the underlying client for components (the rate limiter)
// that need more than get/set/del. It may be nil.
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.rdb
}

// Get returns the value stored at key. found is false on a miss; err is
// non-nil only when the cache could not answer.
func (s *Store) Get(ctx context.Context, key string) (val string, found bool, err error) {
	if !s.Available() {
		return "", false, ErrUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err = s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err)
	}
	return val, true, nil
}

// Set stores val at key. A zero ttl means the key never expires.
func (s *Store) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	if !s.Available() {
		return ErrUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Del removes key. Removing a missing key succeeds.
func (s *Store) Del(ctx context.Context, key string) error {
	if !s.Available() {
		return ErrUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Available() {
		return ErrUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
