package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// OTPRateLimitConfig holds rate limiting configuration for OTP send endpoints
type OTPRateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Window            time.Duration
}

// RateLimitEntry represents a rate limit entry
type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimitInfo contains rate limit information for response headers
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
}

// OTPRateLimiter limits OTP sends per client IP within a fixed window
type OTPRateLimiter struct {
	config        OTPRateLimitConfig
	ipLimits      map[string]*RateLimitEntry
	mutex         sync.Mutex
	now           func() time.Time
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// LimiterOption configures an OTPRateLimiter
type LimiterOption func(*OTPRateLimiter)

// WithLimiterClock replaces time.Now, for tests
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(rl *OTPRateLimiter) { rl.now = now }
}

// NewOTPRateLimiter creates a new rate limiter
func NewOTPRateLimiter(config OTPRateLimitConfig, opts ...LimiterOption) *OTPRateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	rl := &OTPRateLimiter{
		config:      config,
		ipLimits:    make(map[string]*RateLimitEntry),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	// Start cleanup goroutine to remove expired entries
	rl.cleanupTicker = time.NewTicker(config.Window)
	go rl.cleanupExpiredEntries()

	slog.Info("OTP rate limiter initialized",
		"enabled", config.Enabled,
		"requests_per_minute", config.RequestsPerMinute,
		"window", config.Window.String())

	return rl
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (rl *OTPRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.stopCleanup)
	})
}

func (rl *OTPRateLimiter) cleanupExpiredEntries() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.performCleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// performCleanup removes expired entries and returns how many were removed
func (rl *OTPRateLimiter) performCleanup() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for ip, entry := range rl.ipLimits {
		if now.After(entry.ResetTime) {
			delete(rl.ipLimits, ip)
			removed++
		}
	}
	return removed
}

// IsAllowed counts a request from clientIP and reports whether it is within the limit
func (rl *OTPRateLimiter) IsAllowed(clientIP string) (bool, *RateLimitInfo) {
	if !rl.config.Enabled {
		return true, &RateLimitInfo{Limit: -1, Remaining: -1}
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	limit := rl.config.RequestsPerMinute

	entry, exists := rl.ipLimits[clientIP]
	if !exists {
		entry = &RateLimitEntry{}
		rl.ipLimits[clientIP] = entry
	}

	// Reset if window has expired
	if now.After(entry.ResetTime) {
		entry.Count = 0
		entry.ResetTime = now.Add(rl.config.Window)
	}

	info := &RateLimitInfo{
		Limit:     limit,
		Remaining: 0,
		ResetTime: entry.ResetTime,
	}
	if entry.Count >= limit {
		return false, info
	}

	entry.Count++
	info.Remaining = limit - entry.Count
	return true, info
}

// Middleware applies the limiter to the wrapped handler
func (rl *OTPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r)
		allowed, info := rl.IsAllowed(clientIP)

		setRateLimitHeaders(w, info)

		if !allowed {
			slog.Warn("OTP rate limit exceeded",
				"client_ip", clientIP,
				"path", r.URL.Path,
				"limit", info.Limit,
				"reset_time", info.ResetTime.Format(time.RFC3339))

			rl.writeRateLimitErrorResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetRateLimitStats returns current rate limiting statistics
func (rl *OTPRateLimiter) GetRateLimitStats() map[string]interface{} {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	return map[string]interface{}{
		"enabled":             rl.config.Enabled,
		"requests_per_minute": rl.config.RequestsPerMinute,
		"window":              rl.config.Window.String(),
		"active_ip_limits":    len(rl.ipLimits),
	}
}

// setRateLimitHeaders sets rate limit headers in the response
func setRateLimitHeaders(w http.ResponseWriter, info *RateLimitInfo) {
	if info.Limit < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	if !info.ResetTime.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// writeRateLimitErrorResponse writes a 429 with Retry-After in whole seconds
func (rl *OTPRateLimiter) writeRateLimitErrorResponse(w http.ResponseWriter, info *RateLimitInfo) {
	retryAfter := int(math.Ceil(info.ResetTime.Sub(rl.now()).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	writeErrorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded",
		"Too many OTP requests. Please try again later.",
		[]models.ErrorDetail{
			{
				Field: "rate_limit",
				Issue: fmt.Sprintf("Exceeded %d OTP requests per minute", info.Limit),
			},
			{
				Field: "retry_after",
				Issue: fmt.Sprintf("Retry after %d seconds", retryAfter),
			},
		})
}
