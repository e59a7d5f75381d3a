package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestUnconfiguredGateway(t *testing.T) {
	g := NewStripeGateway("")

	_, err := g.CreateSession(context.Background(), SessionRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = g.RetrieveSession(context.Background(), "cs_test")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSessionPaid(t *testing.T) {
	assert.True(t, Session{PaymentStatus: StatusPaid}.Paid())
	assert.False(t, Session{PaymentStatus: "unpaid"}.Paid())
	assert.False(t, Session{}.Paid())
}

func fakeStripe(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	return newStripeGateway("sk_test_123", &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	})
}

func TestCreateSessionWithDiscount(t *testing.T) {
	var sessionForm url.Values
	g := fakeStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/coupons":
			pct, err := strconv.ParseFloat(r.PostForm.Get("percent_off"), 64)
			require.NoError(t, err)
			assert.Equal(t, 10.0, pct)
			assert.Equal(t, "once", r.PostForm.Get("duration"))
			_, _ = io.WriteString(w, `{"id":"co_1","object":"coupon"}`)
		case "/v1/checkout/sessions":
			sessionForm = r.PostForm
			_, _ = io.WriteString(w, `{"id":"cs_1","object":"checkout.session","url":"https://pay.example/cs_1","payment_status":"unpaid","amount_total":3598,"metadata":{"userId":"3"}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	s, err := g.CreateSession(context.Background(), SessionRequest{
		LineItems:       []LineItem{{Name: "Jeans", Image: "https://img/1.png", UnitAmountCents: 1999, Quantity: 2}},
		SuccessURL:      "http://shop/purchase-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       "http://shop/purchase-cancel",
		Metadata:        map[string]string{"userId": "3"},
		DiscountPercent: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, "https://pay.example/cs_1", s.URL)
	assert.Equal(t, int64(3598), s.AmountTotal)

	require.NotNil(t, sessionForm)
	assert.Equal(t, "1999", sessionForm.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", sessionForm.Get("line_items[0][quantity]"))
	assert.Equal(t, "usd", sessionForm.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "co_1", sessionForm.Get("discounts[0][coupon]"))
	assert.Equal(t, "3", sessionForm.Get("metadata[userId]"))
	assert.Equal(t, "payment", sessionForm.Get("mode"))
}

func TestRetrieveSession(t *testing.T) {
	g := fakeStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cs_9","object":"checkout.session","payment_status":"paid","amount_total":500,"metadata":{"couponCode":"GIFTABCDEF"}}`)
	})

	s, err := g.RetrieveSession(context.Background(), "cs_9")
	require.NoError(t, err)
	assert.True(t, s.Paid())
	assert.Equal(t, "GIFTABCDEF", s.Metadata["couponCode"])
}
