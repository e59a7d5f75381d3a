// Package payment defines the hosted checkout port used by the checkout
// service and its Stripe implementation.
package payment

import "context"

// StatusPaid is the payment status of a settled checkout session.
const StatusPaid = "paid"

// LineItem is one product line on the hosted checkout page.
type LineItem struct {
	Name            string
	Image           string
	UnitAmountCents int64
	Quantity        int64
}

// SessionRequest describes a checkout session to open.
//
// DiscountPercent, when non-zero, is applied once to the whole session so
// the amount charged matches the total computed by the caller.
type SessionRequest struct {
	LineItems       []LineItem
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
	DiscountPercent int
}

// Session is the gateway's view of a checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

// Paid reports whether the gateway settled the session.
func (s Session) Paid() bool { return s.PaymentStatus == StatusPaid }

// Gateway opens and inspects hosted checkout sessions.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	RetrieveSession(ctx context.Context, id string) (Session, error)
}
