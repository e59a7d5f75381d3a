package payment

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("payment gateway not configured")

// StripeGateway implements Gateway with Stripe Checkout.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns a gateway using secretKey. An empty key yields a
// gateway whose calls fail with ErrNotConfigured, so the API can still boot
// in environments without payment credentials.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return &StripeGateway{}
	}
	return newStripeGateway(secretKey, nil)
}

func newStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api}
}

// CreateSession opens a card payment session. A discount is applied through
// a one-time percent-off coupon created on the fly.
func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	if g.api == nil {
		return Session{}, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Image != "" {
			product.Images = stripe.StringSlice([]string{li.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyUSD)),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmountCents),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	if req.DiscountPercent > 0 {
		cp := &stripe.CouponParams{
			PercentOff: stripe.Float64(float64(req.DiscountPercent)),
			Duration:   stripe.String(string(stripe.CouponDurationOnce)),
		}
		cp.Context = ctx
		coupon, err := g.api.Coupons.New(cp)
		if err != nil {
			return Session{}, err
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(coupon.ID)}}
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, err
	}
	return fromStripe(s), nil
}

// RetrieveSession fetches a session by id.
func (g *StripeGateway) RetrieveSession(ctx context.Context, id string) (Session, error) {
	if g.api == nil {
		return Session{}, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return Session{}, err
	}
	return fromStripe(s), nil
}

func fromStripe(s *stripe.CheckoutSession) Session {
	return Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
}
