// Package queue defines the order events exchanged over RabbitMQ and the
// consumer that records them.
package queue

// OrderPlacedQueue is the durable queue order events are published to.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is published after a paid checkout session has been
// reconciled into an order. It carries enough for downstream consumers to
// log or notify without reading the database.
type OrderPlacedEvent struct {
	OrderID          uint64           `json:"order_id"`
	UserID           uint64           `json:"user_id"`
	SessionID        string           `json:"session_id"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	CouponCode       string           `json:"coupon_code,omitempty"`
	Items            []OrderEventItem `json:"items"`
	PlacedAt         string           `json:"placed_at"`
}

// OrderEventItem is one purchased line.
type OrderEventItem struct {
	ProductID uint64  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
