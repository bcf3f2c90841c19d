package service

import (
	"context"
	"testing"
	"time"

	"coupon-api/internal/model"
	"coupon-api/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Get(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Create(ctx context.Context, code string, coupon *model.Coupon) error {
	args := m.Called(ctx, code, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) Decrement(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockUsageRepository is a mock implementation of UsageRepository.
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) Get(ctx context.Context, sessionID string) (*model.UsageRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UsageRecord), args.Error(1)
}

func (m *MockUsageRepository) Put(ctx context.Context, sessionID string, record *model.UsageRecord) error {
	args := m.Called(ctx, sessionID, record)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetSnapshotItems(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func newTestService(couponRepo *MockCouponRepository, usageRepo *MockUsageRepository, orderRepo *MockOrderRepository) CouponService {
	return NewCouponService(couponRepo, usageRepo, orderRepo, zerolog.Nop())
}

func TestCreate_Success(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	uses := 5
	couponRepo.On("Create", mock.Anything, "SAVE15", mock.MatchedBy(func(c *model.Coupon) bool {
		return c.Type == "percent" && c.Amount == 15 && c.UsesLeft == 5 && c.ExpiresAt == ""
	})).Return(nil)

	resp, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:   "  save15 ",
		Type:   "percent",
		Amount: 15,
		Uses:   &uses,
	})

	require.NoError(t, err)
	assert.Contains(t, resp.Message, "SAVE15")
	couponRepo.AssertExpectations(t)
}

func TestCreate_DefaultsToUnlimitedUses(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	svc := newTestService(couponRepo, new(MockUsageRepository), new(MockOrderRepository))

	couponRepo.On("Create", mock.Anything, "FOREVER", mock.MatchedBy(func(c *model.Coupon) bool {
		return c.UsesLeft == model.UnlimitedUses
	})).Return(nil)

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:   "FOREVER",
		Type:   "percent",
		Amount: 10,
	})

	require.NoError(t, err)
	couponRepo.AssertExpectations(t)
}

func TestCreate_InvalidTypeNeverWrites(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	svc := newTestService(couponRepo, new(MockUsageRepository), new(MockOrderRepository))

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:   "FIXED5",
		Type:   "fixed",
		Amount: 5,
	})

	require.Error(t, err)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeInvalidCouponType, domainErr.Code)
	couponRepo.AssertNotCalled(t, "Create")
}

func TestCreate_Duplicate(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	svc := newTestService(couponRepo, new(MockUsageRepository), new(MockOrderRepository))

	couponRepo.On("Create", mock.Anything, "SAVE15", mock.Anything).Return(repository.ErrCouponExists)

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:   "save15",
		Type:   "percent",
		Amount: 15,
	})

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeDuplicateCoupon, domainErr.Code)
}

func TestCreate_MissingCode(t *testing.T) {
	svc := newTestService(new(MockCouponRepository), new(MockUsageRepository), new(MockOrderRepository))

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:   "   ",
		Type:   "percent",
		Amount: 15,
	})

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
}

func TestValidate_Success(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "SAVE15").Return(&model.Coupon{
		Type: "percent", Amount: 15, UsesLeft: -1,
	}, nil)
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      " save15 ",
		Cart: []model.CartItem{
			{ID: "a", Name: "Margherita", Price: 100, Qty: 10},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 150.0, resp.Discount)
	assert.Equal(t, 850.0, resp.NewTotal)
	assert.Equal(t, "SAVE15 applied – 15% off", resp.Message)
}

func TestValidate_MergesSnapshotWithCart(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "HALF").Return(&model.Coupon{
		Type: "percent", Amount: 50, UsesLeft: -1,
	}, nil)
	// Snapshot price 10 is authoritative over the resubmitted price 99.
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{
		{ID: "a", Name: "Margherita", Price: 10, Qty: 1},
	}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "HALF",
		Cart: []model.CartItem{
			{ID: "a", Name: "Margherita", Price: 99, Qty: 2},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
	// Merged cart is 3 x 10 = 30; 50% = 15.
	assert.Equal(t, 15.0, resp.Discount)
	assert.Equal(t, 15.0, resp.NewTotal)
}

func TestValidate_RoundsHalfToEven(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "HALF").Return(&model.Coupon{
		Type: "percent", Amount: 50, UsesLeft: -1,
	}, nil)
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "HALF",
		Cart: []model.CartItem{
			{ID: "a", Name: "Cola", Price: 3, Qty: 1},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
	// 3 * 50% = 1.5 rounds to 2 (2 is even), clamped within subtotal 3.
	assert.Equal(t, 2.0, resp.Discount)
	assert.Equal(t, 1.0, resp.NewTotal)
}

func TestValidate_AlreadyUsedInSession(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(&model.UsageRecord{
		Coupon: "SAVE15", UsedAt: "2026-01-01T00:00:00Z",
	}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "save15",
	})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, model.ReasonAlreadyUsedInSession, resp.Reason)
	couponRepo.AssertNotCalled(t, "Get")
}

func TestValidate_DifferentUsedCodeDoesNotBlock(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(&model.UsageRecord{
		Coupon: "OTHER20", UsedAt: "2026-01-01T00:00:00Z",
	}, nil)
	couponRepo.On("Get", mock.Anything, "SAVE15").Return(&model.Coupon{
		Type: "percent", Amount: 15, UsesLeft: -1,
	}, nil)
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "SAVE15",
		Cart:      []model.CartItem{{ID: "a", Price: 100, Qty: 1}},
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestValidate_UnknownCoupon(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "NOPE").Return(nil, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "NOPE",
	})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, model.ReasonInvalidCoupon, resp.Reason)
}

func TestValidate_UsageLimitReached(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "SPENT").Return(&model.Coupon{
		Type: "percent", Amount: 15, UsesLeft: 0,
	}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "SPENT",
	})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, model.ReasonUsageLimitReached, resp.Reason)
}

func TestValidate_UnlimitedNeverLimited(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "FOREVER").Return(&model.Coupon{
		Type: "percent", Amount: 10, UsesLeft: -1,
	}, nil)
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "FOREVER",
		Cart:      []model.CartItem{{ID: "a", Price: 10, Qty: 1}},
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestValidate_Expired(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "OLD").Return(&model.Coupon{
		Type: "percent", Amount: 15, UsesLeft: -1, ExpiresAt: "2020-01-01T00:00:00Z",
	}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "OLD",
	})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, model.ReasonExpired, resp.Reason)
}

func TestValidate_MalformedExpiryFailsOpen(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "WONKY").Return(&model.Coupon{
		Type: "percent", Amount: 10, UsesLeft: -1, ExpiresAt: "never ever",
	}, nil)
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "WONKY",
		Cart:      []model.CartItem{{ID: "a", Price: 10, Qty: 1}},
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestValidate_UnsupportedStoredType(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	// A record that slipped past creation with a different type.
	couponRepo.On("Get", mock.Anything, "FIXED5").Return(&model.Coupon{
		Type: "fixed", Amount: 5, UsesLeft: -1,
	}, nil)
	orderRepo.On("GetSnapshotItems", mock.Anything, "sess-1").Return([]model.CartItem{}, nil)

	resp, err := svc.Validate(context.Background(), &model.ValidateRequest{
		SessionID: "sess-1",
		Code:      "FIXED5",
		Cart:      []model.CartItem{{ID: "a", Price: 10, Qty: 1}},
	})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, model.ReasonUnsupportedType, resp.Reason)
}

func TestValidate_MissingSessionID(t *testing.T) {
	svc := newTestService(new(MockCouponRepository), new(MockUsageRepository), new(MockOrderRepository))

	_, err := svc.Validate(context.Background(), &model.ValidateRequest{Code: "SAVE15"})

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
}

func TestRedeem_Success(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "SAVE15").Return(&model.Coupon{
		Type: "percent", Amount: 15, UsesLeft: 3,
	}, nil)
	couponRepo.On("Decrement", mock.Anything, "SAVE15").Return(nil)
	usageRepo.On("Put", mock.Anything, "sess-1", mock.MatchedBy(func(rec *model.UsageRecord) bool {
		if rec.Coupon != "SAVE15" {
			return false
		}
		_, err := time.Parse(time.RFC3339, rec.UsedAt)
		return err == nil
	})).Return(nil)

	resp, err := svc.Redeem(context.Background(), " save15 ", "sess-1")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "SAVE15")
	couponRepo.AssertExpectations(t)
	usageRepo.AssertExpectations(t)
}

func TestRedeem_AlreadyRedeemed(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(&model.UsageRecord{
		Coupon: "SAVE15", UsedAt: "2026-01-01T00:00:00Z",
	}, nil)

	resp, err := svc.Redeem(context.Background(), "SAVE15", "sess-1")

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, model.ReasonAlreadyRedeemed, resp.Reason)
	// No further decrement and no receipt overwrite.
	couponRepo.AssertNotCalled(t, "Decrement")
	usageRepo.AssertNotCalled(t, "Put")
}

func TestRedeem_DifferentPriorCodeDoesNotBlock(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(&model.UsageRecord{
		Coupon: "OTHER20", UsedAt: "2026-01-01T00:00:00Z",
	}, nil)
	couponRepo.On("Get", mock.Anything, "SAVE15").Return(&model.Coupon{
		Type: "percent", Amount: 15, UsesLeft: -1,
	}, nil)
	couponRepo.On("Decrement", mock.Anything, "SAVE15").Return(nil)
	usageRepo.On("Put", mock.Anything, "sess-1", mock.Anything).Return(nil)

	resp, err := svc.Redeem(context.Background(), "SAVE15", "sess-1")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	usageRepo.AssertExpectations(t)
}

func TestRedeem_CouponNotFound(t *testing.T) {
	couponRepo := new(MockCouponRepository)
	usageRepo := new(MockUsageRepository)
	orderRepo := new(MockOrderRepository)
	svc := newTestService(couponRepo, usageRepo, orderRepo)

	usageRepo.On("Get", mock.Anything, "sess-1").Return(nil, nil)
	couponRepo.On("Get", mock.Anything, "NOPE").Return(nil, nil)

	_, err := svc.Redeem(context.Background(), "NOPE", "sess-1")

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeCouponNotFound, domainErr.Code)
}

func TestRedeem_MissingSessionID(t *testing.T) {
	svc := newTestService(new(MockCouponRepository), new(MockUsageRepository), new(MockOrderRepository))

	_, err := svc.Redeem(context.Background(), "SAVE15", "")

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
}
