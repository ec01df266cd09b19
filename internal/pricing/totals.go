package pricing

import (
	"github.com/shopspring/decimal"

	"cardapio/internal/models"
	"cardapio/internal/money"
)

// Totals is the breakdown shown on the checkout screen and stored on the
// order.
type Totals struct {
	Subtotal            float64 `json:"subtotal"`
	DeliveryFee         float64 `json:"deliveryFee"`
	DiscountPercent     float64 `json:"discountPercent"`
	DiscountFromPercent float64 `json:"discountFromPercent"`
	DiscountValueManual float64 `json:"discountValueManual"`
	CouponDiscountValue float64 `json:"couponDiscountValue"`
	TotalDiscounts      float64 `json:"totalDiscounts"`
	Total               float64 `json:"total"`
}

// Adjustments are the parsed checkout inputs applied on top of the subtotal.
type Adjustments struct {
	DeliveryFee     decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountValue   decimal.Decimal
	Coupon          *models.Coupon
}

// ParseAdjustments reads the free-text inputs of the checkout form.
// Unreadable values count as zero.
func ParseAdjustments(deliveryFee, discountPercent, discountValue string, coupon *models.Coupon) Adjustments {
	return Adjustments{
		DeliveryFee:     money.Parse(deliveryFee),
		DiscountPercent: money.Parse(discountPercent),
		DiscountValue:   money.Parse(discountValue),
		Coupon:          coupon,
	}
}

// ComputeTotals prices a cart with the checkout inputs.
func ComputeTotals(cart Cart, deliveryFeeInput, discountPercentInput, discountValueInput string, coupon *models.Coupon) Totals {
	adj := ParseAdjustments(deliveryFeeInput, discountPercentInput, discountValueInput, coupon)
	return Apply(cartSubtotal(cart), adj)
}

// Apply stacks every discount on the subtotal. The delivery fee is added
// before discounts are taken off and the total never drops below zero.
func Apply(subtotal decimal.Decimal, adj Adjustments) Totals {
	fromPercent := subtotal.Mul(adj.DiscountPercent).Div(hundred)

	couponDiscount := decimal.Zero
	if adj.Coupon != nil {
		value := money.FromFloat(adj.Coupon.Value)
		if adj.Coupon.Type == CouponPercent {
			couponDiscount = subtotal.Mul(value).Div(hundred)
		} else {
			couponDiscount = value
		}
	}

	discounts := fromPercent.Add(adj.DiscountValue).Add(couponDiscount)
	total := subtotal.Add(adj.DeliveryFee).Sub(discounts)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:            money.Float(subtotal),
		DeliveryFee:         money.Float(adj.DeliveryFee),
		DiscountPercent:     money.Float(adj.DiscountPercent),
		DiscountFromPercent: money.Float(fromPercent),
		DiscountValueManual: money.Float(adj.DiscountValue),
		CouponDiscountValue: money.Float(couponDiscount),
		TotalDiscounts:      money.Float(discounts),
		Total:               money.Float(total),
	}
}

func cartSubtotal(cart Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range cart {
		sum = sum.Add(money.FromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}
