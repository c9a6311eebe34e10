package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/gorilla/mux"
)

// Catalog is the subset of the API client used for product browsing
type Catalog interface {
	GetProducts(ctx context.Context, q models.ProductQuery) (*models.ProductListResponse, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
}

// ProductHandler handles product listing and detail requests
type ProductHandler struct {
	catalog Catalog
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.ProductQuery{
		Page:     positiveInt(q.Get("page"), 1),
		Limit:    positiveInt(q.Get("limit"), 12),
		Search:   q.Get("search"),
		Category: q.Get("category"),
	}

	list, err := h.catalog.GetProducts(r.Context(), query)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	slog.Debug("Products listed", "page", query.Page, "limit", query.Limit, "found_count", len(list.Products))
	writeJSONResponse(w, http.StatusOK, list)
}

// GetProduct handles GET /api/products/{slug}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if slug == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Product slug is required", []models.ErrorDetail{
			{Field: "slug", Issue: "cannot be empty"},
		})
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), slug)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return n
	}
	return def
}
