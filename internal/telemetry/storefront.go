package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StorefrontTelemetry records storefront request, backend call and order metrics.
// It satisfies client.Metrics and checkout.OrderRecorder.
type StorefrontTelemetry struct {
	requestCounter    metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram

	backendCallCounter   metric.Int64Counter
	backendCallHistogram metric.Float64Histogram
	tokenRefreshCounter  metric.Int64Counter
	orderCounter         metric.Int64Counter
}

// RequestMetrics contains the telemetry data for one storefront request
type RequestMetrics struct {
	Method       string
	Endpoint     string
	StatusCode   int
	Duration     time.Duration
	ErrorMessage string
	// Raw IP for logging only; metrics carry ClientIPType
	ClientIP     string
	ClientIPType string
}

// NewStorefrontTelemetry creates a new instance of StorefrontTelemetry
func NewStorefrontTelemetry() *StorefrontTelemetry {
	return &StorefrontTelemetry{}
}

// InitializeTelemetry creates all instruments on meter
func (t *StorefrontTelemetry) InitializeTelemetry(meter metric.Meter) error {
	slog.Info("Initializing storefront telemetry")

	var err error

	t.requestCounter, err = meter.Int64Counter(
		"storefront_requests_total",
		metric.WithDescription("Total number of storefront API requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request counter: %w", err)
	}

	t.errorCounter, err = meter.Int64Counter(
		"storefront_errors_total",
		metric.WithDescription("Total number of storefront API requests that failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error counter: %w", err)
	}

	t.durationHistogram, err = meter.Float64Histogram(
		"storefront_request_duration_seconds",
		metric.WithDescription("Duration of storefront API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}

	t.backendCallCounter, err = meter.Int64Counter(
		"storefront_backend_calls_total",
		metric.WithDescription("Total number of calls made to the backend API"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend call counter: %w", err)
	}

	t.backendCallHistogram, err = meter.Float64Histogram(
		"storefront_backend_call_duration_seconds",
		metric.WithDescription("Duration of calls to the backend API"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend call histogram: %w", err)
	}

	t.tokenRefreshCounter, err = meter.Int64Counter(
		"storefront_token_refreshes_total",
		metric.WithDescription("Access token refresh attempts by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create token refresh counter: %w", err)
	}

	t.orderCounter, err = meter.Int64Counter(
		"storefront_orders_placed_total",
		metric.WithDescription("Orders placed through checkout"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create order counter: %w", err)
	}

	slog.Info("Storefront telemetry initialized successfully")
	return nil
}

// RegisterRequestReceived records a successful storefront request
func (t *StorefrontTelemetry) RegisterRequestReceived(ctx context.Context, m RequestMetrics) {
	if t.requestCounter == nil {
		return
	}
	t.requestCounter.Add(ctx, 1, metric.WithAttributes(requestAttributes(m)...))

	slog.Debug("Recorded storefront request",
		"method", m.Method,
		"endpoint", m.Endpoint,
		"status_code", m.StatusCode,
		"client_ip", m.ClientIP,
		"duration_ms", m.Duration.Milliseconds())
}

// RegisterRequestError records a failed storefront request
func (t *StorefrontTelemetry) RegisterRequestError(ctx context.Context, m RequestMetrics) {
	if t.errorCounter == nil {
		return
	}
	attrs := append(requestAttributes(m), attribute.String("error_type", categorizeError(m.ErrorMessage)))
	t.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	slog.Warn("Recorded storefront request error",
		"method", m.Method,
		"endpoint", m.Endpoint,
		"status_code", m.StatusCode,
		"client_ip", m.ClientIP,
		"error", m.ErrorMessage)
}

// RegisterRequestDuration records the duration of a storefront request
func (t *StorefrontTelemetry) RegisterRequestDuration(ctx context.Context, m RequestMetrics) {
	if t.durationHistogram == nil {
		return
	}
	t.durationHistogram.Record(ctx, m.Duration.Seconds(), metric.WithAttributes(requestAttributes(m)...))
}

// RecordBackendCall records one exchange with the backend API
func (t *StorefrontTelemetry) RecordBackendCall(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration) {
	if t.backendCallCounter == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("endpoint", NormalizeBackendEndpoint(endpoint)),
		attribute.String("status_class", statusClass(statusCode)),
	)
	t.backendCallCounter.Add(ctx, 1, attrs)
	t.backendCallHistogram.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRefresh counts a refresh attempt by outcome
func (t *StorefrontTelemetry) RecordTokenRefresh(ctx context.Context, outcome string) {
	if t.tokenRefreshCounter == nil {
		return
	}
	t.tokenRefreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordOrderPlaced counts a placed order
func (t *StorefrontTelemetry) RecordOrderPlaced(ctx context.Context, itemCount int, couponApplied bool) {
	if t.orderCounter == nil {
		return
	}
	t.orderCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("coupon_applied", couponApplied)))
	slog.Debug("Recorded order", "lines", itemCount, "coupon_applied", couponApplied)
}

func requestAttributes(m RequestMetrics) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("method", m.Method),
		attribute.String("endpoint", m.Endpoint),
		attribute.Int("status_code", m.StatusCode),
	}
	if m.ClientIPType != "" {
		attrs = append(attrs, attribute.String("client_ip_type", m.ClientIPType))
	}
	return attrs
}

// categorizeError groups similar errors to prevent high cardinality
func categorizeError(errorMessage string) string {
	msg := strings.ToLower(errorMessage)
	switch {
	case msg == "":
		return "unknown"
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "unauthorized"):
		return "unauthorized"
	case strings.Contains(msg, "forbidden"):
		return "forbidden"
	case strings.Contains(msg, "too many"):
		return "rate_limited"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "bad request"), strings.Contains(msg, "unprocessable"):
		return "bad_request"
	case strings.Contains(msg, "conflict"):
		return "conflict"
	case strings.Contains(msg, "internal"), strings.Contains(msg, "bad gateway"), strings.Contains(msg, "unavailable"):
		return "internal_error"
	default:
		return "other"
	}
}

// Backend collections whose second path segment is an identifier
var identifiedCollections = map[string]bool{
	"products":  true,
	"orders":    true,
	"addresses": true,
}

// NormalizeBackendEndpoint strips the query and replaces identifiers with {id}
func NormalizeBackendEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	segments := strings.Split(strings.Trim(endpoint, "/"), "/")
	if len(segments) >= 2 && identifiedCollections[segments[0]] {
		segments[1] = "{id}"
	}
	return "/" + strings.Join(segments, "/")
}

func statusClass(statusCode int) string {
	if statusCode <= 0 {
		return "network_error"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

// NormalizeClientIP categorizes client IPs to control cardinality
func NormalizeClientIP(clientIP string) string {
	if clientIP == "" {
		return "unknown"
	}

	ip := net.ParseIP(clientIP)
	if ip == nil {
		return "invalid"
	}
	if ip.IsLoopback() {
		return "localhost"
	}
	if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return "internal"
	}
	return "external"
}
