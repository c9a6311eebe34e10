package models

import "time"

// CartItem is a (product, variant, quantity) tuple held locally until an order is placed
type CartItem struct {
	ID       string         `json:"id"`
	Product  Product        `json:"product"`
	Variant  ProductVariant `json:"variant"`
	Quantity int            `json:"quantity"`
	AddedAt  time.Time      `json:"addedAt"`
}

// AddToCartRequest is the body of POST /api/cart/items
type AddToCartRequest struct {
	Slug      string `json:"slug"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest is the body of PATCH /api/cart/items/{id}
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
