package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers classify with errors.Is; anything that matches
// none of these is a server error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("unauthorized - no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("not found")
	ErrPaymentIncomplete  = errors.New("payment not completed")
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCouponExpired      = errors.New("coupon expired")
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrCouponNotFound  = fmt.Errorf("coupon %w", ErrNotFound)
	ErrNoFeatured      = fmt.Errorf("no featured products found: %w", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("checkout session %w", ErrNotFound)
	ErrUserGone        = fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
)

// FieldError is a validation failure with a message safe to show clients.
type FieldError struct {
	Msg string
}

func (e *FieldError) Error() string { return e.Msg }

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &FieldError{Msg: fmt.Sprintf(format, args...)}
}
