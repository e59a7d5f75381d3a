package model

import "time"

// Coupon is a percentage discount owned by a single user. A user holds at
// most one active coupon at a time; redeeming it flips IsActive to false.
//
// Fields:
//  ID                 – primary key identifier.
//  Code               – code the customer types at checkout, unique per user.
//  DiscountPercentage – whole percent taken off the order total (0..100).
//  ExpirationDate     – instant after which the coupon no longer applies.
//  UserID             – owner of the coupon.
//  IsActive           – false once redeemed or expired.
type Coupon struct {
	ID                 uint64    `json:"id"`
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
	UserID             uint64    `json:"userId"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Expired reports whether the coupon's expiration date lies before now.
func (c Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}
