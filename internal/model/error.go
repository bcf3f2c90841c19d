package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeInvalidCouponType = "INVALID_COUPON_TYPE"
	ErrCodeDuplicateCoupon   = "DUPLICATE_COUPON"
	ErrCodeCouponNotFound    = "COUPON_NOT_FOUND"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Soft rejection reasons. These travel inside a normal validate/redeem
// response body, never as a transport-level failure.
const (
	ReasonAlreadyUsedInSession = "ALREADY_USED_IN_SESSION"
	ReasonInvalidCoupon        = "INVALID_COUPON"
	ReasonUsageLimitReached    = "USAGE_LIMIT_REACHED"
	ReasonExpired              = "COUPON_EXPIRED"
	ReasonUnsupportedType      = "UNSUPPORTED_COUPON_TYPE"
	ReasonAlreadyRedeemed      = "ALREADY_REDEEMED"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCouponType = NewDomainError(ErrCodeInvalidCouponType, "Only 'percent' type coupons are allowed")
	ErrDuplicateCoupon   = NewDomainError(ErrCodeDuplicateCoupon, "Coupon code already exists")
	ErrCouponNotFound    = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
)
