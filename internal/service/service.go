package service

import (
	"context"

	"coupon-api/internal/model"
)

// CouponService defines the coupon management operations.
type CouponService interface {
	// Create creates a new coupon record. The code is normalised before
	// use; only percent coupons are accepted and duplicate codes are
	// rejected.
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.CreateCouponResponse, error)

	// Validate checks whether a coupon currently applies to the session's
	// merged cart and computes a discount preview. It never mutates stored
	// state; rejections are soft results, not errors.
	Validate(ctx context.Context, req *model.ValidateRequest) (*model.ValidateResponse, error)

	// Redeem finalises coupon use for a session: decrements remaining uses
	// and records a usage receipt. A repeated redemption of the same code
	// by the same session is a soft no-op.
	Redeem(ctx context.Context, code, sessionID string) (*model.RedeemResponse, error)
}
