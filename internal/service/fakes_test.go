package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/storefront/internal/cache"
	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/payment"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/utils"
)

type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *testLogger) Infof(format string, args ...interface{})  { l.add("INFO", format, args...) }
func (l *testLogger) Warnf(format string, args ...interface{})  { l.add("WARN", format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.add("ERROR", format, args...) }

func (l *testLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// newCache starts a miniredis server; closing it makes the cache unreachable.
func newCache(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb, time.Second), mr
}

type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, name, email, password, role string, cost int) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.byID {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	m.nextID++
	u := model.User{ID: m.nextID, Name: name, Email: email, PasswordHash: hash, Role: role}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type memProducts struct {
	mu            sync.Mutex
	nextID        uint64
	byID          map[uint64]model.Product
	featuredReads int
	listErr       error
}

func newMemProducts(ps ...model.Product) *memProducts {
	m := &memProducts{byID: map[uint64]model.Product{}}
	for _, p := range ps {
		m.byID[p.ID] = p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *memProducts) sorted(keep func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0)
	for _, p := range m.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memProducts) ListAll(context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(model.Product) bool { return true }), nil
}

func (m *memProducts) ListFeatured(context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.featuredReads++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(func(p model.Product) bool { return p.IsFeatured }), nil
}

func (m *memProducts) ListByCategory(_ context.Context, category string) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p model.Product) bool { return p.Category == category }), nil
}

func (m *memProducts) Sample(_ context.Context, n int) ([]model.Product, error) {
	all, _ := m.ListAll(context.Background())
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *memProducts) GetByID(_ context.Context, id uint64) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *memProducts) Create(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = *p
	return nil
}

func (m *memProducts) ToggleFeatured(_ context.Context, id uint64) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	p.IsFeatured = !p.IsFeatured
	m.byID[id] = p
	return p, nil
}

func (m *memProducts) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

// memCoupons enforces one active coupon per user like the unique index does.
type memCoupons struct {
	mu      sync.Mutex
	nextID  uint64
	coupons []model.Coupon
}

func (m *memCoupons) FindActiveByCode(_ context.Context, userID uint64, code string) (model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.UserID == userID && c.Code == code && c.IsActive {
			return c, nil
		}
	}
	return model.Coupon{}, repository.ErrCouponNotFound
}

func (m *memCoupons) FindActiveByUser(_ context.Context, userID uint64) (model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return model.Coupon{}, repository.ErrCouponNotFound
}

func (m *memCoupons) Create(_ context.Context, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.coupons {
		if existing.UserID == c.UserID && (existing.IsActive || existing.Code == c.Code) {
			return repository.ErrConflict
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.IsActive = true
	m.coupons = append(m.coupons, *c)
	return nil
}

func (m *memCoupons) Deactivate(_ context.Context, userID uint64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.coupons {
		if m.coupons[i].UserID == userID && m.coupons[i].Code == code {
			m.coupons[i].IsActive = false
		}
	}
	return nil
}

func (m *memCoupons) active(userID uint64) []model.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Coupon
	for _, c := range m.coupons {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

type memOrders struct {
	mu       sync.Mutex
	orders   []model.Order
	countErr error
}

func (m *memOrders) Create(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uint64(len(m.orders) + 1)
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrders) CountBySession(_ context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, o := range m.orders {
		if o.StripeSessionID == sessionID {
			n++
		}
	}
	return n, nil
}

type fakeGateway struct {
	CreateFn   func(ctx context.Context, req payment.SessionRequest) (payment.Session, error)
	RetrieveFn func(ctx context.Context, id string) (payment.Session, error)
}

func (f *fakeGateway) CreateSession(ctx context.Context, req payment.SessionRequest) (payment.Session, error) {
	return f.CreateFn(ctx, req)
}

func (f *fakeGateway) RetrieveSession(ctx context.Context, id string) (payment.Session, error) {
	return f.RetrieveFn(ctx, id)
}

type fakeEvents struct {
	err    error
	events []queue.OrderPlacedEvent
}

func (f *fakeEvents) PublishOrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}
