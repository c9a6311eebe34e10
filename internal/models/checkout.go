package models

import "github.com/shopspring/decimal"

// Address is a saved delivery address of the current user
type Address struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Landmark     string `json:"landmark,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	AddressType  string `json:"addressType,omitempty"`
	IsDefault    bool   `json:"isDefault"`
}

// AddressRequest is the body for creating or updating an address
type AddressRequest struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=100"`
	Phone        string `json:"phone" validate:"required,len=10,numeric"`
	AddressLine1 string `json:"addressLine1" validate:"required,max=255"`
	AddressLine2 string `json:"addressLine2,omitempty" validate:"omitempty,max=255"`
	Landmark     string `json:"landmark,omitempty" validate:"omitempty,max=100"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	Pincode      string `json:"pincode" validate:"required,len=6,numeric"`
	AddressType  string `json:"addressType,omitempty" validate:"omitempty,oneof=HOME WORK OTHER"`
	IsDefault    bool   `json:"isDefault"`
}

// WarehouseConfig describes the pickup location used for rate quotes
type WarehouseConfig struct {
	Pincode string `json:"pincode"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// ShippingRateRequest asks the backend for delivery options. Weight is in grams.
type ShippingRateRequest struct {
	PickupPincode   string          `json:"pickupPincode"`
	DeliveryPincode string          `json:"deliveryPincode"`
	Weight          int             `json:"weight"`
	OrderValue      decimal.Decimal `json:"orderValue"`
	COD             bool            `json:"cod"`
}

// DeliveryOption is a server-quoted shipping choice
type DeliveryOption struct {
	ID                string          `json:"id"`
	CourierName       string          `json:"courierName"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDays     int             `json:"estimatedDays,omitempty"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	Recommended       bool            `json:"recommended"`
}

type ShippingRatesResponse struct {
	Options []DeliveryOption `json:"options"`
}

// Coupon discount types
const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFlat       = "FLAT"
)

// AppliedCoupon is transient checkout state produced by a successful validation
type AppliedCoupon struct {
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	DiscountType         string          `json:"discountType"`
	DiscountValue        decimal.Decimal `json:"discountValue"`
	DiscountAmount       decimal.Decimal `json:"discountAmount"`
	CouponType           string          `json:"couponType"`
	ApplicableProductIDs []string        `json:"applicableProductIds,omitempty"`
}

// ValidateCouponRequest is the body of POST /coupons/validate
type ValidateCouponRequest struct {
	Code        string          `json:"code"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
	ProductIDs  []string        `json:"productIds,omitempty"`
}

// CouponValidationResponse is the backend's verdict on a coupon code
type CouponValidationResponse struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Coupon  *AppliedCoupon `json:"coupon,omitempty"`
}

// AvailableCoupon is a coupon the current user may apply
type AvailableCoupon struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	DiscountType   string          `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	CouponType     string          `json:"couponType"`
}
