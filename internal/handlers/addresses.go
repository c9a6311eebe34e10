package handlers

import (
	"context"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/gorilla/mux"
)

// AddressBook is the address management surface exposed over HTTP
type AddressBook interface {
	List(ctx context.Context) ([]models.Address, error)
	Create(ctx context.Context, req models.AddressRequest) (*models.Address, error)
	Update(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error)
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) (*models.Address, error)
}

// AddressHandler handles saved address requests
type AddressHandler struct {
	addresses AddressBook
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addresses AddressBook) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// ListAddresses handles GET /api/addresses
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.List(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	writeJSONResponse(w, http.StatusOK, addresses)
}

// CreateAddress handles POST /api/addresses
func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req models.AddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	address, err := h.addresses.Create(r.Context(), req)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, address)
}

// UpdateAddress handles PUT /api/addresses/{id}
func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req models.AddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	address, err := h.addresses.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, address)
}

// DeleteAddress handles DELETE /api/addresses/{id}
func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.addresses.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultAddress handles POST /api/addresses/{id}/default
func (h *AddressHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	address, err := h.addresses.SetDefault(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, address)
}
