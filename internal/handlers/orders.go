package handlers

import (
	"context"
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/gorilla/mux"
)

// OrderHistory is the subset of the API client used for order history
type OrderHistory interface {
	GetOrders(ctx context.Context) (*models.OrderListResponse, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// OrderHandler handles order history requests
type OrderHandler struct {
	orders OrderHistory
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderHistory) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.GetOrders(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, order)
}
