package router

import (
	"net/http"
	"strings"

	"coupon-api/internal/handler"
	"coupon-api/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
// Only coupon creation is admin-authenticated; validation and redemption
// are open endpoints.
func New(
	couponHandler *handler.CouponHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Admin coupon creation, guarded by the shared-secret header.
	adminAuth := middleware.APIKeyAuth(adminAPIKey, logger)
	mux.Handle("/api/coupons", adminAuth(http.HandlerFunc(couponHandler.Create)))

	// Validation and redemption share the /api/coupons/ subtree.
	mux.HandleFunc("/api/coupons/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/coupons/validate":
			couponHandler.Validate(w, r)
		case strings.HasSuffix(r.URL.Path, "/redeem"):
			couponHandler.Redeem(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
