package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/middleware"
	"github.com/gorilla/mux"
)

// TelemetryMiddleware wraps HTTP handlers to automatically collect telemetry
type TelemetryMiddleware struct {
	telemetry *StorefrontTelemetry
}

// NewTelemetryMiddleware creates a new telemetry middleware
func NewTelemetryMiddleware(telemetry *StorefrontTelemetry) *TelemetryMiddleware {
	return &TelemetryMiddleware{telemetry: telemetry}
}

// Middleware returns the HTTP middleware function
func (tm *TelemetryMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		clientIP := middleware.ClientIP(r)
		m := RequestMetrics{
			Method:       r.Method,
			Endpoint:     routeTemplate(r),
			ClientIP:     clientIP,
			ClientIPType: NormalizeClientIP(clientIP),
		}

		next.ServeHTTP(wrapper, r)

		m.StatusCode = wrapper.statusCode
		m.Duration = time.Since(start)

		ctx := r.Context()
		if wrapper.statusCode >= 400 {
			m.ErrorMessage = errorMessage(wrapper.statusCode)
			tm.telemetry.RegisterRequestError(ctx, m)
		} else {
			tm.telemetry.RegisterRequestReceived(ctx, m)
		}
		tm.telemetry.RegisterRequestDuration(ctx, m)
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}

// routeTemplate uses the matched mux route so path parameters do not create new series
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func errorMessage(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return "HTTP Error " + strconv.Itoa(statusCode)
}
