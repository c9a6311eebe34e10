package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the server-driven lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRefunded       OrderStatus = "REFUNDED"
	OrderStatusFailed         OrderStatus = "FAILED"
)

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are expected
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed:
		return true
	}
	return false
}

// IsTrackable reports whether tracking details are meaningful for display
func (s OrderStatus) IsTrackable() bool {
	return s == OrderStatusShipped || s == OrderStatusOutForDelivery || s == OrderStatusDelivered
}

// Order is owned by the backend; the storefront only reads it
type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	Status            OrderStatus     `json:"status"`
	TotalMRP          decimal.Decimal `json:"totalMrp"`
	DiscountOnMRP     decimal.Decimal `json:"discountOnMrp"`
	CouponDiscount    decimal.Decimal `json:"couponDiscount"`
	CouponCode        string          `json:"couponCode,omitempty"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ShippingAddress   Address         `json:"shippingAddress"`
	Items             []OrderItem     `json:"items"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	CourierName       string          `json:"courierName,omitempty"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId"`
	ProductName string          `json:"productName"`
	VariantName string          `json:"variantName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CreateOrderRequest carries identifiers only; the backend recomputes every amount
type CreateOrderRequest struct {
	AddressID        string             `json:"addressId"`
	Items            []OrderItemRequest `json:"items"`
	CouponCode       string             `json:"couponCode,omitempty"`
	DeliveryOptionID string             `json:"deliveryOptionId"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// OrderListResponse is a page of the current user's orders
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}
