package handlers

import (
	"context"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// AccountFlows covers onboarding and newsletter signup
type AccountFlows interface {
	CompleteOnboarding(ctx context.Context, req models.OnboardingRequest) (*models.User, error)
	SubscribeNewsletter(ctx context.Context, email string) (*models.MessageResponse, error)
}

// AccountHandler handles onboarding and newsletter requests
type AccountHandler struct {
	flows AccountFlows
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(flows AccountFlows) *AccountHandler {
	return &AccountHandler{flows: flows}
}

// CompleteOnboarding handles POST /api/onboarding
func (h *AccountHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req models.OnboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.flows.CompleteOnboarding(r.Context(), req)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// SubscribeNewsletter handles POST /api/newsletter
func (h *AccountHandler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.flows.SubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}
