package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"cardapio/internal/models"
	"cardapio/internal/money"
)

// Kind discriminates catalog entries.
type Kind string

const (
	KindProduct Kind = "product"
	KindCombo   Kind = "combo"
)

// Entry is anything that can be listed on the menu and added to a cart.
type Entry interface {
	Kind() Kind
	EntryID() string
	EntryName() string
	CategoryKey() string
	Image() string
	Variants() []models.Size
	DisplayPrice() float64
}

// ProductEntry adapts a product document.
type ProductEntry struct {
	Product models.Product
}

func (e ProductEntry) Kind() Kind              { return KindProduct }
func (e ProductEntry) EntryID() string         { return e.Product.ID.Hex() }
func (e ProductEntry) EntryName() string       { return e.Product.Name }
func (e ProductEntry) Image() string           { return e.Product.ImageURL }
func (e ProductEntry) Variants() []models.Size { return e.Product.Sizes }

func (e ProductEntry) CategoryKey() string {
	if e.Product.CategoryID.IsZero() {
		return ""
	}
	return e.Product.CategoryID.Hex()
}

// DisplayPrice is the cheapest size, or the first defined flat price.
func (e ProductEntry) DisplayPrice() float64 {
	if len(e.Product.Sizes) > 0 {
		return minSizePrice(e.Product.Sizes)
	}
	return firstDefined(e.Product.FinalPrice, e.Product.Price, e.Product.OriginalPrice)
}

// ComboEntry adapts a combo document.
type ComboEntry struct {
	Combo models.Combo
}

func (e ComboEntry) Kind() Kind              { return KindCombo }
func (e ComboEntry) EntryID() string         { return e.Combo.ID.Hex() }
func (e ComboEntry) EntryName() string       { return e.Combo.Name }
func (e ComboEntry) Image() string           { return e.Combo.ImageURL }
func (e ComboEntry) Variants() []models.Size { return nil }

func (e ComboEntry) CategoryKey() string {
	if e.Combo.CategoryID.IsZero() {
		return ""
	}
	return e.Combo.CategoryID.Hex()
}

func (e ComboEntry) DisplayPrice() float64 {
	return firstDefined(e.Combo.FinalPrice, e.Combo.Price, e.Combo.OriginalPrice)
}

// ComputePrice returns the single display price of an entry.
func ComputePrice(e Entry) float64 {
	return e.DisplayPrice()
}

// BasePrice is the price a product contributes to a combo: the cheapest
// size, or the flat price.
func BasePrice(p models.Product) float64 {
	if len(p.Sizes) > 0 {
		return minSizePrice(p.Sizes)
	}
	if p.Price == nil {
		return 0
	}
	return money.Sanitize(p.Price.Float())
}

// ComboPrices is the snapshot stored on a combo when it is saved.
type ComboPrices struct {
	OriginalPrice  float64
	DiscountAmount float64
	FinalPrice     float64
}

// ComboPricing sums the item prices and applies the combo discount, never
// going below zero.
func ComboPricing(items []models.ComboItem, discountType string, discountValue float64) ComboPrices {
	original := decimal.Zero
	for _, item := range items {
		original = original.Add(money.FromFloat(item.Price.Float()))
	}

	discount := decimal.Zero
	switch discountType {
	case models.DiscountPercent:
		discount = original.Mul(money.FromFloat(discountValue)).Div(hundred)
	case models.DiscountValue:
		discount = money.FromFloat(discountValue)
	}

	final := original.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return ComboPrices{
		OriginalPrice:  money.Float(original),
		DiscountAmount: money.Float(discount),
		FinalPrice:     money.Float(final),
	}
}

var hundred = decimal.NewFromInt(100)

func minSizePrice(sizes []models.Size) float64 {
	lowest := math.Inf(1)
	for _, s := range sizes {
		lowest = math.Min(lowest, money.Sanitize(s.Price.Float()))
	}
	return money.Sanitize(lowest)
}

func firstDefined(values ...*models.Amount) float64 {
	for _, v := range values {
		if v != nil {
			return money.Sanitize(v.Float())
		}
	}
	return 0
}
