package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
)

// GetAddresses lists the current user's saved addresses
func (c *APIClient) GetAddresses(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	if err := c.Request(ctx, "/addresses", RequestOptions{RequiresAuth: true}, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *APIClient) CreateAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error) {
	var address models.Address
	err := c.Request(ctx, "/addresses", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPost,
		Body:         req,
	}, &address)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (c *APIClient) UpdateAddress(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error) {
	var address models.Address
	err := c.Request(ctx, "/addresses/"+url.PathEscape(id), RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPatch,
		Body:         req,
	}, &address)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (c *APIClient) DeleteAddress(ctx context.Context, id string) error {
	return c.Request(ctx, "/addresses/"+url.PathEscape(id), RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodDelete,
	}, nil)
}

func (c *APIClient) SetDefaultAddress(ctx context.Context, id string) (*models.Address, error) {
	var address models.Address
	err := c.Request(ctx, "/addresses/"+url.PathEscape(id)+"/default", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPatch,
	}, &address)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// GetWarehouseConfig returns the pickup location for rate quotes
func (c *APIClient) GetWarehouseConfig(ctx context.Context) (*models.WarehouseConfig, error) {
	var cfg models.WarehouseConfig
	if err := c.Request(ctx, "/shipping/warehouse-config", RequestOptions{}, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetShippingRates quotes delivery options for one destination and parcel
func (c *APIClient) GetShippingRates(ctx context.Context, req models.ShippingRateRequest) (*models.ShippingRatesResponse, error) {
	var resp models.ShippingRatesResponse
	err := c.Request(ctx, "/shipping/rates", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPost,
		Body:         req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateCoupon asks the backend whether code applies to the given order amount
func (c *APIClient) ValidateCoupon(ctx context.Context, req models.ValidateCouponRequest) (*models.CouponValidationResponse, error) {
	var resp models.CouponValidationResponse
	err := c.Request(ctx, "/coupons/validate", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPost,
		Body:         req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) GetAvailableCoupons(ctx context.Context) ([]models.AvailableCoupon, error) {
	var coupons []models.AvailableCoupon
	if err := c.Request(ctx, "/coupons/available", RequestOptions{RequiresAuth: true}, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// CreateOrder places an order. The idempotency key makes a resubmission safe.
func (c *APIClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	var order models.Order
	err := c.Request(ctx, "/orders", RequestOptions{
		RequiresAuth: true,
		Method:       http.MethodPost,
		Body:         req,
		Headers:      map[string]string{"Idempotency-Key": idempotencyKey},
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *APIClient) GetOrders(ctx context.Context) (*models.OrderListResponse, error) {
	var resp models.OrderListResponse
	if err := c.Request(ctx, "/orders", RequestOptions{RequiresAuth: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.Request(ctx, "/orders/"+url.PathEscape(id), RequestOptions{RequiresAuth: true}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
