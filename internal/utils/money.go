package utils

import (
	"fmt"
	"math"
)

// Cents converts a decimal price to integer cents, rounding half away from zero.
func Cents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// PercentOf returns round(cents * pct / 100).
func PercentOf(cents int64, pct int) int64 {
	return int64(math.Round(float64(cents) * float64(pct) / 100))
}

// FormatCents renders an amount of cents as dollars, e.g. 3598 -> "35.98".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// CentsToDollars is the float form of an amount, used in JSON responses.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}
