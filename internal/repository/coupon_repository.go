package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"coupon-api/internal/model"
	"coupon-api/internal/store"

	"github.com/rs/zerolog"
)

// couponRepository implements CouponRepository on top of the tree store.
type couponRepository struct {
	store  store.TreeStore
	logger zerolog.Logger
}

// NewCouponRepository creates a tree-store-backed coupon repository.
func NewCouponRepository(st store.TreeStore, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		store:  st,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// Get retrieves a coupon by normalized code.
func (r *couponRepository) Get(ctx context.Context, code string) (*model.Coupon, error) {
	raw, err := r.store.Get(ctx, couponPath(code))
	if err != nil {
		if err == store.ErrNotFound {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to read coupon")
		return nil, fmt.Errorf("failed to read coupon %s: %w", code, err)
	}

	coupon, err := decodeCoupon(raw)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("malformed coupon record")
		return nil, fmt.Errorf("malformed coupon record at %s: %w", code, err)
	}
	return coupon, nil
}

// Create writes a new coupon record if none exists at the code's key.
func (r *couponRepository) Create(ctx context.Context, code string, coupon *model.Coupon) error {
	err := r.store.Update(ctx, couponPath(code), func(old []byte) ([]byte, error) {
		if old != nil {
			return nil, ErrCouponExists
		}
		return json.Marshal(coupon)
	})
	if err != nil {
		if err == ErrCouponExists {
			return err
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon %s: %w", code, err)
	}

	r.logger.Debug().Str("code", code).Msg("coupon created")
	return nil
}

// Decrement atomically decrements usesLeft, flooring at zero. The
// read-modify-write runs inside a single store update so concurrent
// redemptions cannot lose a decrement.
func (r *couponRepository) Decrement(ctx context.Context, code string) error {
	err := r.store.Update(ctx, couponPath(code), func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, store.ErrNotFound
		}

		coupon, err := decodeCoupon(old)
		if err != nil {
			return nil, err
		}

		if coupon.Unlimited() {
			return nil, store.ErrUnchanged
		}

		coupon.UsesLeft--
		if coupon.UsesLeft < 0 {
			coupon.UsesLeft = 0
		}
		return json.Marshal(coupon)
	})
	if err != nil {
		if err == store.ErrNotFound {
			return err
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to decrement coupon uses")
		return fmt.Errorf("failed to decrement coupon %s: %w", code, err)
	}

	r.logger.Debug().Str("code", code).Msg("coupon uses decremented")
	return nil
}

// decodeCoupon parses a stored coupon record, failing fast on shape
// mismatch rather than letting missing fields leak into business logic.
func decodeCoupon(raw []byte) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := json.Unmarshal(raw, &coupon); err != nil {
		return nil, fmt.Errorf("failed to decode coupon record: %w", err)
	}
	if coupon.Type == "" {
		return nil, fmt.Errorf("coupon record missing type field")
	}
	return &coupon, nil
}
