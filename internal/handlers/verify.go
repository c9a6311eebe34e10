package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/auth"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// VerificationFlows is the verification surface of the auth service
type VerificationFlows interface {
	StartVerification(redirect string) (*auth.VerificationFlow, error)
	SendVerificationOTP(ctx context.Context, flow *auth.VerificationFlow, ch auth.Channel, phone string) error
	ConfirmVerification(ctx context.Context, flow *auth.VerificationFlow, ch auth.Channel, otp string) (auth.VerificationStep, error)
}

type verifyRequest struct {
	Channel  auth.Channel `json:"channel"`
	Phone    string       `json:"phone"`
	OTP      string       `json:"otp"`
	Redirect string       `json:"redirect"`
}

// VerifyHandler drives the contact verification flow. The process serves one
// profile, so one flow is active at a time.
type VerifyHandler struct {
	flows VerificationFlows
	mu    sync.Mutex
	flow  *auth.VerificationFlow
}

// NewVerifyHandler creates a new verification handler
func NewVerifyHandler(flows VerificationFlows) *VerifyHandler {
	return &VerifyHandler{flows: flows}
}

// Reset drops the active flow; the next visitor has to start over
func (h *VerifyHandler) Reset() {
	h.mu.Lock()
	h.flow = nil
	h.mu.Unlock()
}

// Start handles POST /api/verify/start
func (h *VerifyHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flow, err := h.flows.StartVerification(SafeRedirect(req.Redirect))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	h.mu.Lock()
	h.flow = flow
	h.mu.Unlock()

	writeJSONResponse(w, http.StatusOK, flow.State())
}

// State handles GET /api/verify
func (h *VerifyHandler) State(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.current(w)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, flow.State())
}

// Select handles POST /api/verify/select
func (h *VerifyHandler) Select(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.current(w)
	if !ok {
		return
	}
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var err error
	switch req.Channel {
	case auth.ChannelEmail:
		err = flow.SelectEmail()
	case auth.ChannelPhone:
		err = flow.SelectPhone()
	default:
		writeErrorResponse(w, http.StatusBadRequest, "invalid_channel", "Channel must be email or phone", nil)
		return
	}
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, flow.State())
}

// Send handles POST /api/verify/send
func (h *VerifyHandler) Send(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.current(w)
	if !ok {
		return
	}
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.flows.SendVerificationOTP(r.Context(), flow, req.Channel, req.Phone); err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, flow.State())
}

// Confirm handles POST /api/verify/confirm
func (h *VerifyHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.current(w)
	if !ok {
		return
	}
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.flows.ConfirmVerification(r.Context(), flow, req.Channel, req.OTP); err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, flow.State())
}

// Back handles POST /api/verify/back
func (h *VerifyHandler) Back(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.current(w)
	if !ok {
		return
	}
	flow.Back()
	writeJSONResponse(w, http.StatusOK, flow.State())
}

func (h *VerifyHandler) current(w http.ResponseWriter) (*auth.VerificationFlow, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.flow == nil {
		writeErrorResponse(w, http.StatusNotFound, "no_verification", "Verification has not been started", []models.ErrorDetail{
			{Field: "flow", Issue: "POST /api/verify/start first"},
		})
		return nil, false
	}
	return h.flow, true
}
