package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"coupon-api/internal/model"
	"coupon-api/internal/service"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon-related HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Create handles POST /api/coupons requests.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	var req model.CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		status, code, message := errorStatus(err)
		writeError(w, r, status, code, message, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Validate handles POST /api/coupons/validate requests.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	var req model.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Validate(r.Context(), &req)
	if err != nil {
		status, code, message := errorStatus(err)
		writeError(w, r, status, code, message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Redeem handles POST /api/coupons/{code}/redeem requests. The session id
// is taken from the sessionId query parameter, or from a JSON body when
// the parameter is absent.
func (h *CouponHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	code, ok := redeemCode(r.URL.Path)
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "coupon code is required", h.logger)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		var body struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			sessionID = body.SessionID
		}
	}
	if sessionID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "sessionId is required", h.logger)
		return
	}

	resp, err := h.service.Redeem(r.Context(), code, sessionID)
	if err != nil {
		status, errCode, message := errorStatus(err)
		writeError(w, r, status, errCode, message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// redeemCode extracts the coupon code from a /api/coupons/{code}/redeem path.
func redeemCode(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/coupons/")
	if !ok {
		return "", false
	}
	code, ok := strings.CutSuffix(rest, "/redeem")
	if !ok || code == "" || strings.Contains(code, "/") {
		return "", false
	}
	return code, true
}

// errorStatus maps a service error to an HTTP status, error code and
// client-facing message.
func errorStatus(err error) (int, string, string) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case model.ErrCodeInvalidCouponType, model.ErrCodeMissingField:
			return http.StatusBadRequest, domainErr.Code, domainErr.Message
		case model.ErrCodeDuplicateCoupon:
			return http.StatusConflict, domainErr.Code, domainErr.Message
		case model.ErrCodeCouponNotFound:
			return http.StatusNotFound, domainErr.Code, domainErr.Message
		}
	}
	return http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error"
}
