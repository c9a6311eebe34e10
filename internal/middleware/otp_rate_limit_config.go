package middleware

import (
	"log/slog"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/config"
)

// ParseOTPRateLimitConfig parses OTP rate limiting configuration from the config struct
func ParseOTPRateLimitConfig(cfg *config.Config) OTPRateLimitConfig {
	limitConfig := OTPRateLimitConfig{
		Enabled:           config.Bool("OTP_RATE_LIMIT_ENABLED", cfg.OTPRateLimitEnabled, true),
		RequestsPerMinute: config.Int("OTP_RATE_LIMIT_PER_MINUTE", cfg.OTPRateLimitPerMinute, 5),
		Window:            time.Minute,
	}

	slog.Info("OTP rate limiting configuration parsed",
		"enabled", limitConfig.Enabled,
		"requests_per_minute", limitConfig.RequestsPerMinute)

	return limitConfig
}
