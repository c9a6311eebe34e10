package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// HealthCheck checks the health of the backend API
func (c *APIClient) HealthCheck(ctx context.Context) error {
	return c.Request(ctx, "/health", RequestOptions{Method: http.MethodGet}, nil)
}

// GetProducts lists products
func (c *APIClient) GetProducts(ctx context.Context, q models.ProductQuery) (*models.ProductListResponse, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}

	endpoint := "/products"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var resp models.ProductListResponse
	if err := c.Request(ctx, endpoint, RequestOptions{Method: http.MethodGet}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProduct retrieves a product by slug
func (c *APIClient) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := c.Request(ctx, "/products/"+url.PathEscape(slug), RequestOptions{Method: http.MethodGet}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// SubscribeNewsletter registers an email for the newsletter
func (c *APIClient) SubscribeNewsletter(ctx context.Context, email string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.Request(ctx, "/newsletter/subscribe", RequestOptions{
		Method: http.MethodPost,
		Body:   models.NewsletterRequest{Email: email},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
