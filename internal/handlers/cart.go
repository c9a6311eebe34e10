package handlers

import (
	"net/http"
	"strings"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/cart"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/gorilla/mux"
)

// CartStore is the cart surface exposed over HTTP
type CartStore interface {
	AddToCart(product models.Product, variant models.ProductVariant, quantity int) []models.CartItem
	UpdateQuantity(itemID string, quantity int) []models.CartItem
	RemoveItem(itemID string) []models.CartItem
	ClearCart() []models.CartItem
	Items() []models.CartItem
	Item(itemID string) (models.CartItem, error)
	Summary() cart.Summary
}

// CartResponse is the cart with its derived values
type CartResponse struct {
	Items   []models.CartItem `json:"items"`
	Summary cart.Summary      `json:"summary"`
}

// CartHandler handles cart requests
type CartHandler struct {
	cart    CartStore
	catalog Catalog
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store CartStore, catalog Catalog) *CartHandler {
	return &CartHandler{cart: store, catalog: catalog}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK)
}

// AddItem handles POST /api/cart/items. The product is fetched so the cart
// keeps the current name, images and prices of the chosen variant.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" || req.VariantID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Product and variant are required", []models.ErrorDetail{
			{Field: "slug", Issue: "required"},
			{Field: "variantId", Issue: "required"},
		})
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.Slug)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	variant, ok := product.Variant(req.VariantID)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "variant_not_found", "Variant not found for this product", nil)
		return
	}
	if variant.Stock <= 0 {
		writeErrorResponse(w, http.StatusConflict, "out_of_stock", "This variant is out of stock", nil)
		return
	}

	h.cart.AddToCart(*product, variant, req.Quantity)
	h.writeCart(w, http.StatusOK)
}

// UpdateItem handles PATCH /api/cart/items/{id}. A quantity of zero or less removes the item.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.cart.Item(id); err != nil {
		writeAPIError(w, r, err)
		return
	}

	var req models.UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.cart.UpdateQuantity(id, req.Quantity)
	h.writeCart(w, http.StatusOK)
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.cart.Item(id); err != nil {
		writeAPIError(w, r, err)
		return
	}

	h.cart.RemoveItem(id)
	h.writeCart(w, http.StatusOK)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	h.writeCart(w, http.StatusOK)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, status int) {
	writeJSONResponse(w, status, CartResponse{
		Items:   h.cart.Items(),
		Summary: h.cart.Summary(),
	})
}
