package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/payment"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/utils"
)

// Session metadata keys. The gateway keeps them between session creation
// and the success callback.
const (
	metaUserID     = "userId"
	metaCouponCode = "couponCode"
	metaProducts   = "products"

	// maxMetadataValue is the longest metadata value the gateway stores.
	maxMetadataValue = 500
)

// Cart limits. maxQuantity matches what the hosted checkout page accepts
// per line; maxUnitPrice keeps the dollars-to-cents conversion in range.
const (
	maxQuantity  = 999
	maxUnitPrice = 1_000_000.0
)

// CheckoutConfig holds checkout constants.
type CheckoutConfig struct {
	ClientURL           string
	BonusThresholdCents int64
	BonusPercent        int
	BonusValidity       time.Duration
}

// DefaultCheckoutConfig awards a 10% coupon valid for 30 days to orders of
// $200 or more.
func DefaultCheckoutConfig(clientURL string) CheckoutConfig {
	return CheckoutConfig{
		ClientURL:           strings.TrimRight(clientURL, "/"),
		BonusThresholdCents: 20000,
		BonusPercent:        10,
		BonusValidity:       30 * 24 * time.Hour,
	}
}

// CartItem is one line of the cart sent by the storefront.
type CartItem struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CheckoutResult is the redirect handle for the hosted payment page.
type CheckoutResult struct {
	SessionID  string
	URL        string
	TotalCents int64
}

// manifestItem is the compact line stored in session metadata.
type manifestItem struct {
	ID       uint64  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CheckoutService turns carts into gateway sessions and paid sessions into
// orders.
type CheckoutService struct {
	cfg     CheckoutConfig
	gateway payment.Gateway
	coupons CouponStore
	orders  OrderStore
	events  OrderEvents
	log     Logger
	now     func() time.Time
}

func NewCheckoutService(cfg CheckoutConfig, gw payment.Gateway, coupons CouponStore, orders OrderStore, events OrderEvents, log Logger) *CheckoutService {
	return &CheckoutService{cfg: cfg, gateway: gw, coupons: coupons, orders: orders, events: events, log: log, now: time.Now}
}

// CreateSession prices the cart in cents, applies the user's coupon when the
// code matches an active unexpired one, and opens a gateway session. Totals
// at or above the bonus threshold earn the user a new coupon, unless they
// already hold an active one.
func (s *CheckoutService) CreateSession(ctx context.Context, userID uint64, items []CartItem, couponCode string) (CheckoutResult, error) {
	if len(items) == 0 {
		return CheckoutResult{}, invalid("products must be a non-empty array")
	}

	var total int64
	lines := make([]payment.LineItem, 0, len(items))
	manifest := make([]manifestItem, 0, len(items))
	for _, it := range items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if it.ID == 0 {
			return CheckoutResult{}, invalid("every product needs an id")
		}
		if it.Price < 0 || qty < 0 {
			return CheckoutResult{}, invalid("price and quantity must not be negative")
		}
		if qty > maxQuantity {
			return CheckoutResult{}, invalid("quantity must be at most %d", maxQuantity)
		}
		if math.IsNaN(it.Price) || it.Price > maxUnitPrice {
			return CheckoutResult{}, invalid("price must be at most %.0f", maxUnitPrice)
		}
		unit := utils.Cents(it.Price)
		line := unit * int64(qty)
		if unit != 0 && line/unit != int64(qty) || total > math.MaxInt64-line {
			return CheckoutResult{}, invalid("cart total is too large")
		}
		total += line
		lines = append(lines, payment.LineItem{Name: it.Name, Image: it.Image, UnitAmountCents: unit, Quantity: int64(qty)})
		manifest = append(manifest, manifestItem{ID: it.ID, Quantity: qty, Price: it.Price})
	}

	coupon, err := s.applicableCoupon(ctx, userID, couponCode)
	if err != nil {
		return CheckoutResult{}, err
	}
	discountPct := 0
	if coupon != nil {
		discountPct = coupon.DiscountPercentage
		total -= utils.PercentOf(total, discountPct)
	}

	products, err := json.Marshal(manifest)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(products) > maxMetadataValue {
		return CheckoutResult{}, invalid("cart has too many distinct products")
	}
	meta := map[string]string{
		metaUserID:   strconv.FormatUint(userID, 10),
		metaProducts: string(products),
	}
	if coupon != nil {
		meta[metaCouponCode] = coupon.Code
	}

	sess, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		LineItems:       lines,
		SuccessURL:      s.cfg.ClientURL + "/purchase-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       s.cfg.ClientURL + "/purchase-cancel",
		Metadata:        meta,
		DiscountPercent: discountPct,
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("create checkout session: %w", err)
	}

	if total >= s.cfg.BonusThresholdCents {
		if err := s.awardBonusCoupon(ctx, userID); err != nil {
			return CheckoutResult{}, err
		}
	}
	return CheckoutResult{SessionID: sess.ID, URL: sess.URL, TotalCents: total}, nil
}

// FinalizeSession records the order for a paid session and redeems its
// coupon. Only the user the session was opened for may finalize it; anyone
// else gets ErrSessionNotFound.
//
// Calling it twice for the same session stores a second order. The repeat
// is logged but not refused.
func (s *CheckoutService) FinalizeSession(ctx context.Context, callerID uint64, sessionID string) (model.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.Order{}, invalid("sessionId is required")
	}
	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return model.Order{}, fmt.Errorf("retrieve checkout session: %w", err)
	}

	userID, err := strconv.ParseUint(sess.Metadata[metaUserID], 10, 64)
	if err != nil {
		return model.Order{}, fmt.Errorf("session %s: bad %s metadata: %w", sessionID, metaUserID, err)
	}
	if userID != callerID {
		s.log.Warnf("checkout: user %d tried to finalize session %s of user %d", callerID, sessionID, userID)
		return model.Order{}, ErrSessionNotFound
	}
	if !sess.Paid() {
		return model.Order{}, ErrPaymentIncomplete
	}

	var manifest []manifestItem
	if err := json.Unmarshal([]byte(sess.Metadata[metaProducts]), &manifest); err != nil {
		return model.Order{}, fmt.Errorf("session %s: bad %s metadata: %w", sessionID, metaProducts, err)
	}

	code := sess.Metadata[metaCouponCode]
	if code != "" {
		if err := s.coupons.Deactivate(ctx, userID, code); err != nil {
			return model.Order{}, fmt.Errorf("redeem coupon: %w", err)
		}
	}

	switch n, err := s.orders.CountBySession(ctx, sessionID); {
	case err != nil:
		s.log.Warnf("checkout: order count for session %s unavailable: %v", sessionID, err)
	case n > 0:
		s.log.Warnf("checkout: session %s already has %d order(s), storing another", sessionID, n)
	}

	order := model.Order{
		UserID:           userID,
		TotalAmountCents: sess.AmountTotal,
		StripeSessionID:  sessionID,
		Items:            make([]model.OrderItem, 0, len(manifest)),
	}
	for _, m := range manifest {
		order.Items = append(order.Items, model.OrderItem{ProductID: m.ID, Quantity: m.Quantity, Price: m.Price})
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	order.CreatedAt = s.now().UTC()

	s.publishPlaced(ctx, order, code)
	return order, nil
}

// applicableCoupon returns the coupon to apply, or nil when no code was sent
// or it does not name an active unexpired coupon of the user.
func (s *CheckoutService) applicableCoupon(ctx context.Context, userID uint64, code string) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	c, err := s.coupons.FindActiveByCode(ctx, userID, code)
	if errors.Is(err, repository.ErrCouponNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if c.Expired(s.now()) {
		return nil, nil
	}
	return &c, nil
}

func (s *CheckoutService) awardBonusCoupon(ctx context.Context, userID uint64) error {
	_, err := s.coupons.FindActiveByUser(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrCouponNotFound) {
		return fmt.Errorf("load active coupon: %w", err)
	}

	c := model.Coupon{
		Code:               bonusCode(),
		DiscountPercentage: s.cfg.BonusPercent,
		ExpirationDate:     s.now().Add(s.cfg.BonusValidity).UTC(),
		UserID:             userID,
	}
	err = s.coupons.Create(ctx, &c)
	if errors.Is(err, repository.ErrConflict) {
		// a concurrent checkout won the race
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bonus coupon: %w", err)
	}
	s.log.Infof("checkout: bonus coupon %s issued to user %d", c.Code, userID)
	return nil
}

func (s *CheckoutService) publishPlaced(ctx context.Context, o model.Order, couponCode string) {
	if s.events == nil {
		return
	}
	ev := queue.OrderPlacedEvent{
		OrderID:          o.ID,
		UserID:           o.UserID,
		SessionID:        o.StripeSessionID,
		TotalAmountCents: o.TotalAmountCents,
		CouponCode:       couponCode,
		Items:            make([]queue.OrderEventItem, 0, len(o.Items)),
		PlacedAt:         o.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, queue.OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	if err := s.events.PublishOrderPlaced(ctx, ev); err != nil {
		s.log.Warnf("checkout: order %d event not published: %v", o.ID, err)
	}
}

// bonusCode returns "GIFT" followed by six uppercase alphanumerics.
func bonusCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "GIFT" + strings.ToUpper(id[:6])
}
