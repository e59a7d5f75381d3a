package model

import "time"

// Order is a paid purchase. Orders are written only after the payment
// gateway reports the checkout session as paid.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – customer who paid.
//  Items            – purchased products with the unit price charged.
//  TotalAmountCents – amount the gateway collected, in cents.
//  StripeSessionID  – checkout session the order was reconciled from.
//  CreatedAt        – creation timestamp.
type Order struct {
	ID               uint64      `json:"id"`
	UserID           uint64      `json:"userId"`
	Items            []OrderItem `json:"products"`
	TotalAmountCents int64       `json:"totalAmountCents"`
	StripeSessionID  string      `json:"stripeSessionId"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// OrderItem is one line of an order (order_items table).
type OrderItem struct {
	ProductID uint64  `json:"product"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
