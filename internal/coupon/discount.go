package coupon

import (
	"math"
	"strings"
	"time"
)

// NormalizeCode canonicalises a coupon code for use as a store key.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PercentDiscount computes the discount for a percent coupon. The raw
// discount is rounded to a whole currency unit with round-half-to-even
// semantics, then clamped so it never exceeds the subtotal and never goes
// negative.
func PercentDiscount(subtotal, percent float64) float64 {
	discount := math.RoundToEven(subtotal * percent / 100)
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// expiryLayouts are the ISO-8601 shapes accepted for expiresAt, tried in
// order after any trailing UTC "Z" suffix has been stripped.
var expiryLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Expired reports whether an expiresAt value has passed, comparing
// strictly-after in UTC. A malformed value is treated as non-expiring.
func Expired(expiresAt string, now time.Time) bool {
	if expiresAt == "" {
		return false
	}

	trimmed := strings.TrimSuffix(strings.TrimSpace(expiresAt), "Z")
	for _, layout := range expiryLayouts {
		if expiry, err := time.Parse(layout, trimmed); err == nil {
			return now.UTC().After(expiry)
		}
	}
	return false
}
