package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are resolved
// once by chi's RealIP at the edge of the router and are not read here.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// hasPathPrefix matches prefix on segment boundaries: /orders matches /orders/1 but not /ordersx
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}

// isAPIPath reports whether the request expects JSON instead of a redirect
func isAPIPath(path string) bool {
	return hasPathPrefix(path, "/api")
}
