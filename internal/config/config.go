package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront process
type Config struct {
	Port                  string
	Environment           string
	LogLevel              string
	APIBaseURL            string
	APITimeout            string
	StorageBackend        string
	DataDir               string
	RateQuoteTTL          string
	CacheCleanupInterval  string
	AccessTokenCookie     string
	UserCookie            string
	OTPRateLimitEnabled   string
	OTPRateLimitPerMinute string
	MetricsExporter       string
	MetricsPort           string
	// TrustProxyHeaders enables X-Forwarded-For/X-Real-IP; only set it behind a proxy that overwrites them
	TrustProxyHeaders string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() *Config {
	// Existing environment variables win over .env entries
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Could not load .env file, continuing with system environment variables only", "error", err)
	} else {
		slog.Info("Successfully loaded .env file")
	}

	config := &Config{
		Port:                  getEnvWithDefault("PORT", "3000"),
		Environment:           getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
		APIBaseURL:            getEnvWithDefault("API_BASE_URL", "http://localhost:4000/api"),
		APITimeout:            getEnvWithDefault("API_TIMEOUT", "30s"),
		StorageBackend:        getEnvWithDefault("STORAGE_BACKEND", "file"),
		DataDir:               getEnvWithDefault("DATA_DIR", "./data"),
		RateQuoteTTL:          getEnvWithDefault("RATE_QUOTE_TTL", "5m"),
		CacheCleanupInterval:  getEnvWithDefault("CACHE_CLEANUP_INTERVAL", "1m"),
		AccessTokenCookie:     getEnvWithDefault("ACCESS_TOKEN_COOKIE", "accessToken"),
		UserCookie:            getEnvWithDefault("USER_COOKIE", "user"),
		OTPRateLimitEnabled:   getEnvWithDefault("OTP_RATE_LIMIT_ENABLED", "true"),
		OTPRateLimitPerMinute: getEnvWithDefault("OTP_RATE_LIMIT_PER_MINUTE", "5"),
		MetricsExporter:       getEnvWithDefault("METRICS_EXPORTER", "scraper"),
		MetricsPort:           getEnvWithDefault("METRICS_PORT", "9080"),
		TrustProxyHeaders:     getEnvWithDefault("TRUST_PROXY_HEADERS", "false"),
	}

	utils.SetupLogging(config.LogLevel)

	slog.Info("Configuration loaded",
		"port", config.Port,
		"environment", config.Environment,
		"logLevel", config.LogLevel,
		"apiBaseURL", config.APIBaseURL,
		"apiTimeout", config.APITimeout,
		"storageBackend", config.StorageBackend,
		"dataDir", config.DataDir,
		"rateQuoteTTL", config.RateQuoteTTL,
		"otpRateLimitEnabled", config.OTPRateLimitEnabled,
		"trustProxyHeaders", config.TrustProxyHeaders,
		"metricsExporter", config.MetricsExporter)

	return config
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Duration parses a duration field, falling back to def when it is empty or invalid
func Duration(name, value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		if value != "" {
			slog.Warn("Invalid duration, using default", "setting", name, "provided", value, "default", def.String())
		}
		return def
	}
	return d
}

// Int parses an integer field, falling back to def when it is empty or not positive
func Int(name, value string, def int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		if value != "" {
			slog.Warn("Invalid integer, using default", "setting", name, "provided", value, "default", def)
		}
		return def
	}
	return n
}

// Bool parses a boolean field, falling back to def when it is empty or invalid
func Bool(name, value string, def bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		if value != "" {
			slog.Warn("Invalid boolean, using default", "setting", name, "provided", value, "default", def)
		}
		return def
	}
	return b
}
