package pricing

import (
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Summary is the checkout price breakdown. It mirrors the backend's order
// computation; the backend remains the authority for the charged amount.
type Summary struct {
	ItemCount      int             `json:"itemCount"`
	TotalMRP       decimal.Decimal `json:"totalMrp"`
	DiscountOnMRP  decimal.Decimal `json:"discountOnMrp"`
	CouponDiscount decimal.Decimal `json:"couponDiscount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Total          decimal.Decimal `json:"total"`
}

// Calculate prices items with an optional coupon and delivery option
func Calculate(items []models.CartItem, coupon *models.AppliedCoupon, option *models.DeliveryOption) Summary {
	totalMRP := decimal.Zero
	discountOnMRP := decimal.Zero
	count := 0

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totalMRP = totalMRP.Add(item.Variant.MRP.Mul(qty))
		discountOnMRP = discountOnMRP.Add(item.Variant.MRP.Sub(item.Variant.SellingPrice).Mul(qty))
		count += item.Quantity
	}

	couponDiscount := decimal.Zero
	if coupon != nil {
		couponDiscount = coupon.DiscountAmount
	}
	deliveryFee := decimal.Zero
	if option != nil {
		deliveryFee = option.Price
	}

	s := Totals(totalMRP, discountOnMRP, couponDiscount, deliveryFee)
	s.ItemCount = count
	return s
}

// Totals applies the order formula to already aggregated amounts:
// subtotal = totalMRP - discountOnMRP - couponDiscount (never below zero),
// total = subtotal + deliveryFee
func Totals(totalMRP, discountOnMRP, couponDiscount, deliveryFee decimal.Decimal) Summary {
	subtotal := totalMRP.Sub(discountOnMRP).Sub(couponDiscount)
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}

	return Summary{
		TotalMRP:       totalMRP,
		DiscountOnMRP:  discountOnMRP,
		CouponDiscount: couponDiscount,
		Subtotal:       subtotal,
		DeliveryFee:    deliveryFee,
		Total:          subtotal.Add(deliveryFee),
	}
}

// CouponCoversItems reports whether a coupon restricted to certain products
// applies to at least one of items. Unrestricted coupons always apply.
func CouponCoversItems(coupon *models.AppliedCoupon, items []models.CartItem) bool {
	if coupon == nil || len(coupon.ApplicableProductIDs) == 0 {
		return true
	}
	allowed := make(map[string]struct{}, len(coupon.ApplicableProductIDs))
	for _, id := range coupon.ApplicableProductIDs {
		allowed[id] = struct{}{}
	}
	for _, item := range items {
		if _, ok := allowed[item.Product.ID]; ok {
			return true
		}
	}
	return false
}
