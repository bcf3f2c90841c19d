package model

// CouponTypePercent is the only coupon type the service accepts today.
const CouponTypePercent = "percent"

// UnlimitedUses is the usesLeft sentinel for coupons with no usage cap.
const UnlimitedUses = -1

// Coupon represents a discount coupon record as stored in the tree store
// under coupons/<CODE>.
type Coupon struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	UsesLeft int     `json:"usesLeft"`
	// ExpiresAt is an ISO-8601 timestamp string. It is omitted from the
	// stored record entirely when the coupon does not expire.
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Unlimited reports whether the coupon has no usage cap.
func (c *Coupon) Unlimited() bool {
	return c.UsesLeft == UnlimitedUses
}

// UsageRecord records the last coupon redeemed by a session, stored under
// couponUsage/<sessionId>. At most one record exists per session
// (last-write-wins).
type UsageRecord struct {
	Coupon string `json:"coupon"`
	UsedAt string `json:"usedAt"`
}

// OrderSnapshot holds the items previously accumulated for a session,
// stored under orders/<sessionId>. It is owned by order placement and
// consumed read-only here.
type OrderSnapshot struct {
	Items []CartItem `json:"items"`
}

// CreateCouponRequest is the request payload for creating a coupon.
type CreateCouponRequest struct {
	Code   string  `json:"code"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	// Uses is optional; absent means unlimited.
	Uses      *int   `json:"uses,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// CreateCouponResponse is the response payload for a created coupon.
type CreateCouponResponse struct {
	Message string `json:"message"`
}

// ValidateRequest is the request payload for validating a coupon against
// a session's cart.
type ValidateRequest struct {
	SessionID string     `json:"sessionId"`
	Code      string     `json:"code"`
	Cart      []CartItem `json:"cart"`
}

// ValidateResponse is the response payload for a validation request.
// Soft rejections set Valid to false with a machine-readable Reason; they
// are not transport-level failures.
type ValidateResponse struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	NewTotal float64 `json:"newTotal"`
	Reason   string  `json:"reason,omitempty"`
	Message  string  `json:"message"`
}

// RedeemResponse is the response payload for a redemption request.
type RedeemResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}
