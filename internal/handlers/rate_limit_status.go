package handlers

import (
	"log/slog"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/middleware"
)

// RateLimitStatusHandler reports the OTP rate limiter's counters
type RateLimitStatusHandler struct {
	limiter *middleware.OTPRateLimiter
}

// NewRateLimitStatusHandler creates a new rate limit status handler
func NewRateLimitStatusHandler(limiter *middleware.OTPRateLimiter) *RateLimitStatusHandler {
	return &RateLimitStatusHandler{limiter: limiter}
}

// GetRateLimitStatus handles GET /api/rate-limit/status
func (h *RateLimitStatusHandler) GetRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	if h.limiter == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", "Rate limiter not available", nil)
		return
	}

	stats := h.limiter.GetRateLimitStats()
	slog.Debug("Rate limit status retrieved", "active_ip_limits", stats["active_ip_limits"])
	writeJSONResponse(w, http.StatusOK, stats)
}
