package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"coupon-api/internal/coupon"
	"coupon-api/internal/model"
	"coupon-api/internal/repository"
	"coupon-api/internal/store"

	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.UsageRepository
	orderRepo  repository.OrderRepository
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	usageRepo repository.UsageRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		orderRepo:  orderRepo,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Create creates a new coupon record.
func (s *couponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.CreateCouponResponse, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	code := coupon.NormalizeCode(req.Code)
	if code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "coupon code is required")
	}

	// Reject before touching the store so an invalid type never writes.
	if req.Type != model.CouponTypePercent {
		s.logger.Warn().
			Str("code", code).
			Str("type", req.Type).
			Msg("rejected coupon with unsupported type")
		return nil, model.ErrInvalidCouponType
	}

	usesLeft := model.UnlimitedUses
	if req.Uses != nil {
		usesLeft = *req.Uses
	}

	record := &model.Coupon{
		Type:      req.Type,
		Amount:    req.Amount,
		UsesLeft:  usesLeft,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.couponRepo.Create(ctx, code, record); err != nil {
		if err == repository.ErrCouponExists {
			s.logger.Warn().Str("code", code).Msg("duplicate coupon code")
			return nil, model.ErrDuplicateCoupon
		}
		s.logger.Error().Err(err).Str("code", code).Msg("failed to create coupon")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().
		Str("code", code).
		Float64("amount", record.Amount).
		Int("uses_left", record.UsesLeft).
		Msg("coupon created")

	return &model.CreateCouponResponse{
		Message: fmt.Sprintf("Coupon %s created successfully", code),
	}, nil
}

// Validate checks whether a coupon applies to the session's merged cart
// and computes the discount preview. Read-only.
func (s *couponService) Validate(ctx context.Context, req *model.ValidateRequest) (*model.ValidateResponse, error) {
	if req == nil || req.SessionID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "sessionId is required")
	}

	code := coupon.NormalizeCode(req.Code)
	if code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "coupon code is required")
	}

	// A usage record only blocks reuse when it names this exact code.
	usage, err := s.usageRepo.Get(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check coupon usage: %w", err)
	}
	if usage != nil && usage.Coupon == code {
		return reject(model.ReasonAlreadyUsedInSession, "Coupon already used in this session"), nil
	}

	record, err := s.couponRepo.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if record == nil {
		return reject(model.ReasonInvalidCoupon, "Invalid coupon"), nil
	}

	if !record.Unlimited() && record.UsesLeft <= 0 {
		return reject(model.ReasonUsageLimitReached, "Coupon usage limit reached"), nil
	}

	if coupon.Expired(record.ExpiresAt, time.Now()) {
		return reject(model.ReasonExpired, "Coupon has expired"), nil
	}

	previous, err := s.orderRepo.GetSnapshotItems(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order snapshot: %w", err)
	}

	merged := coupon.MergeCarts(previous, req.Cart)
	subtotal := coupon.Subtotal(merged)

	// Creation already restricts the type set; kept as a safety check.
	if record.Type != model.CouponTypePercent {
		return reject(model.ReasonUnsupportedType, "Only percentage-based coupons are supported"), nil
	}

	discount := coupon.PercentDiscount(subtotal, record.Amount)
	newTotal := subtotal - discount

	s.logger.Debug().
		Str("code", code).
		Str("session_id", req.SessionID).
		Float64("subtotal", subtotal).
		Float64("discount", discount).
		Msg("coupon validated")

	return &model.ValidateResponse{
		Valid:    true,
		Discount: discount,
		NewTotal: newTotal,
		Message:  fmt.Sprintf("%s applied – %s%% off", code, strconv.FormatFloat(record.Amount, 'f', -1, 64)),
	}, nil
}

// Redeem finalises coupon use for a session.
func (s *couponService) Redeem(ctx context.Context, code, sessionID string) (*model.RedeemResponse, error) {
	if sessionID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "sessionId is required")
	}

	code = coupon.NormalizeCode(code)
	if code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "coupon code is required")
	}

	// Idempotency guard: a session that already redeemed this exact code
	// gets a soft refusal, and usesLeft is not decremented again.
	usage, err := s.usageRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check coupon usage: %w", err)
	}
	if usage != nil && usage.Coupon == code {
		return &model.RedeemResponse{
			Success: false,
			Reason:  model.ReasonAlreadyRedeemed,
			Message: "Already redeemed",
		}, nil
	}

	record, err := s.couponRepo.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if record == nil {
		return nil, model.ErrCouponNotFound
	}

	if err := s.couponRepo.Decrement(ctx, code); err != nil {
		if err == store.ErrNotFound {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to decrement coupon uses: %w", err)
	}

	receipt := &model.UsageRecord{
		Coupon: code,
		UsedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.usageRepo.Put(ctx, sessionID, receipt); err != nil {
		return nil, fmt.Errorf("failed to record coupon usage: %w", err)
	}

	s.logger.Info().
		Str("code", code).
		Str("session_id", sessionID).
		Msg("coupon redeemed")

	return &model.RedeemResponse{
		Success: true,
		Message: fmt.Sprintf("Coupon %s redeemed", code),
	}, nil
}

// reject builds a soft validation rejection.
func reject(reason, message string) *model.ValidateResponse {
	return &model.ValidateResponse{
		Valid:   false,
		Reason:  reason,
		Message: message,
	}
}
