package models

import "github.com/shopspring/decimal"

// Product is a catalogue entry as served by the backend
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	Images      []string         `json:"images,omitempty"`
	IsActive    bool             `json:"isActive"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is a purchasable SKU of a product. Weight is in grams.
type ProductVariant struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	Weight       int             `json:"weight"`
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int             `json:"stock"`
}

// Variant returns the variant with the given id
func (p Product) Variant(variantID string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// ProductQuery holds the listing filters accepted by GET /products
type ProductQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// ProductListResponse is a paginated product listing
type ProductListResponse struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
