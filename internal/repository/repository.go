package repository

import (
	"context"
	"errors"

	"coupon-api/internal/model"
	"coupon-api/internal/store"
)

// Top-level store namespaces.
const (
	nsCoupons = "coupons"
	nsUsage   = "couponUsage"
	nsOrders  = "orders"
)

// ErrCouponExists is returned by Create when a record already exists at
// the coupon's key.
var ErrCouponExists = errors.New("coupon already exists")

// CouponRepository defines the interface for coupon record access.
type CouponRepository interface {
	// Get retrieves a coupon by normalized code. Returns nil, nil when the
	// coupon does not exist.
	Get(ctx context.Context, code string) (*model.Coupon, error)

	// Create writes a new coupon record, failing with ErrCouponExists if a
	// record already exists at the code's key. The exists check and the
	// write are atomic.
	Create(ctx context.Context, code string, coupon *model.Coupon) error

	// Decrement atomically decrements usesLeft for the coupon, flooring at
	// zero. Coupons with unlimited uses are left untouched.
	Decrement(ctx context.Context, code string) error
}

// UsageRepository defines the interface for session usage record access.
type UsageRepository interface {
	// Get retrieves the usage record for a session. Returns nil, nil when
	// the session has no record.
	Get(ctx context.Context, sessionID string) (*model.UsageRecord, error)

	// Put writes the usage record for a session, unconditionally
	// overwriting any prior record.
	Put(ctx context.Context, sessionID string, record *model.UsageRecord) error
}

// OrderRepository defines read-only access to order snapshots. Snapshots
// are owned and mutated by order placement, outside this service.
type OrderRepository interface {
	// GetSnapshotItems retrieves the previously accumulated items for a
	// session. Returns an empty slice when no snapshot exists.
	GetSnapshotItems(ctx context.Context, sessionID string) ([]model.CartItem, error)
}

// couponPath returns the store path for a coupon code.
func couponPath(code string) string {
	return store.Path(nsCoupons, code)
}

// usagePath returns the store path for a session's usage record.
func usagePath(sessionID string) string {
	return store.Path(nsUsage, sessionID)
}

// orderPath returns the store path for a session's order snapshot.
func orderPath(sessionID string) string {
	return store.Path(nsOrders, sessionID)
}
