package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/auth"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/cart"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/checkout"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/client"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/middleware"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/services"
)

// writeJSONResponse is a helper function to write JSON responses
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

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

// decodeJSON reads the request body into dst, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON", nil)
		return false
	}
	return true
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Local sentinel errors and the responses they produce
var errorMappings = []errorMapping{
	{cart.ErrItemNotFound, http.StatusNotFound, "cart_item_not_found"},
	{checkout.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{checkout.ErrNoAddressSelected, http.StatusBadRequest, "address_required"},
	{checkout.ErrUnknownAddress, http.StatusNotFound, "address_not_found"},
	{checkout.ErrNoDeliveryOption, http.StatusBadRequest, "delivery_option_required"},
	{checkout.ErrUnknownDeliveryOption, http.StatusNotFound, "delivery_option_not_found"},
	{checkout.ErrEmptyCouponCode, http.StatusBadRequest, "coupon_code_required"},
	{checkout.ErrCouponInvalid, http.StatusUnprocessableEntity, "invalid_coupon"},
	{checkout.ErrOrderInProgress, http.StatusConflict, "order_in_progress"},
	{checkout.ErrSessionChanged, http.StatusConflict, "session_changed"},
	{services.ErrNotAuthenticated, http.StatusUnauthorized, "unauthorized"},
	{auth.ErrInvalidTransition, http.StatusConflict, "invalid_step"},
	{auth.ErrAlreadyVerified, http.StatusConflict, "already_verified"},
	{auth.ErrResendCooldown, http.StatusTooManyRequests, "resend_cooldown"},
}

type sessionCookiesKey struct{}

// withSessionCookies lets writeAPIError expire the session cookies of the request it answers
func withSessionCookies(expire func(http.ResponseWriter)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), sessionCookiesKey{}, expire)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeSessionExpired answers a request whose session ended during a failed
// refresh. The cookies go too, or the route guard keeps the login page out of reach.
func writeSessionExpired(w http.ResponseWriter, r *http.Request, err error) {
	if expire, ok := r.Context().Value(sessionCookiesKey{}).(func(http.ResponseWriter)); ok {
		expire(w)
	}
	slog.Info("Session expired during request", "method", r.Method, "path", r.URL.Path)
	writeErrorResponse(w, http.StatusUnauthorized, "session_expired", err.Error(), []models.ErrorDetail{
		{Field: "redirect", Issue: middleware.LoginPath},
	})
}

// writeAPIError renders err as an ErrorResponse. Backend failures keep their
// normalized kind; transport failures become a generic 500.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, client.ErrSessionExpired) {
		writeSessionExpired(w, r, err)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeErrorResponse(w, m.status, m.code, err.Error(), nil)
			return
		}
	}

	apiErr := client.AsAPIError(err)
	status, code := http.StatusInternalServerError, "internal_error"
	switch apiErr.Kind {
	case client.KindValidation:
		status, code = apiErr.StatusCode, "validation_error"
	case client.KindAuth:
		status, code = http.StatusUnauthorized, "unauthorized"
	case client.KindNotFound:
		status, code = http.StatusNotFound, "not_found"
	case client.KindServer:
		status, code = http.StatusBadGateway, "backend_error"
	case client.KindNetwork:
		status, code = http.StatusInternalServerError, "network_error"
	}
	if apiErr.Code != "" {
		code = apiErr.Code
	}
	if status < 400 {
		status = http.StatusBadRequest
	}

	if status >= 500 {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", apiErr.Message)
	}
	writeErrorResponse(w, status, code, apiErr.Message, nil)
}
