package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/checkout"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// Checkout is the checkout surface exposed over HTTP
type Checkout interface {
	LoadWarehouseConfig(ctx context.Context) error
	LoadAddresses(ctx context.Context) error
	SelectAddress(addressID string) error
	ClearAddressSelection()
	RefreshRates(ctx context.Context) error
	SelectDeliveryOption(optionID string) error
	ApplyCoupon(ctx context.Context, code string) (*models.AppliedCoupon, error)
	RemoveCoupon()
	PlaceOrder(ctx context.Context) (*checkout.Confirmation, error)
	View() checkout.View
}

// CouponLister lists coupons the current user may apply
type CouponLister interface {
	GetAvailableCoupons(ctx context.Context) ([]models.AvailableCoupon, error)
}

type selectAddressRequest struct {
	AddressID string `json:"addressId"`
}

type selectDeliveryOptionRequest struct {
	OptionID string `json:"optionId"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// CheckoutHandler handles checkout requests. Failures that belong next to a
// control (rates, coupon) are returned inside the view as well as the status code.
type CheckoutHandler struct {
	checkout Checkout
	coupons  CouponLister
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(c Checkout, coupons CouponLister) *CheckoutHandler {
	return &CheckoutHandler{checkout: c, coupons: coupons}
}

// GetCheckout handles GET /api/checkout. It loads whatever is missing and
// refreshes rates when their inputs changed.
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.checkout.LoadWarehouseConfig(ctx); err != nil {
		slog.Warn("Checkout without warehouse config", "error", err)
	}
	if err := h.checkout.LoadAddresses(ctx); err != nil {
		slog.Warn("Checkout without addresses", "error", err)
	}
	if err := h.checkout.RefreshRates(ctx); err != nil {
		slog.Warn("Checkout without delivery options", "error", err)
	}

	writeJSONResponse(w, http.StatusOK, h.checkout.View())
}

// SelectAddress handles PUT /api/checkout/address. An empty id clears the
// selection, which also lets a failed rate quote be retried.
func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var req selectAddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.AddressID == "" {
		h.checkout.ClearAddressSelection()
		writeJSONResponse(w, http.StatusOK, h.checkout.View())
		return
	}

	if err := h.checkout.SelectAddress(req.AddressID); err != nil {
		writeAPIError(w, r, err)
		return
	}
	if err := h.checkout.RefreshRates(r.Context()); err != nil {
		slog.Warn("Rate quote failed after address change", "address_id", req.AddressID, "error", err)
	}
	writeJSONResponse(w, http.StatusOK, h.checkout.View())
}

// SelectDeliveryOption handles PUT /api/checkout/delivery-option
func (h *CheckoutHandler) SelectDeliveryOption(w http.ResponseWriter, r *http.Request) {
	var req selectDeliveryOptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.checkout.SelectDeliveryOption(req.OptionID); err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.checkout.View())
}

// ApplyCoupon handles POST /api/checkout/coupon
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.checkout.ApplyCoupon(r.Context(), req.Code); err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.checkout.View())
}

// RemoveCoupon handles DELETE /api/checkout/coupon
func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.checkout.RemoveCoupon()
	writeJSONResponse(w, http.StatusOK, h.checkout.View())
}

// AvailableCoupons handles GET /api/coupons/available
func (h *CheckoutHandler) AvailableCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.GetAvailableCoupons(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	if coupons == nil {
		coupons = []models.AvailableCoupon{}
	}
	writeJSONResponse(w, http.StatusOK, coupons)
}

// PlaceOrder handles POST /api/checkout/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	confirmation, err := h.checkout.PlaceOrder(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, confirmation)
}
