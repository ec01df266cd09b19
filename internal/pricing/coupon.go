package pricing

import (
	"strings"

	"cardapio/internal/models"
)

const (
	CouponPercent = "percent"
	CouponValue   = "value"
)

// DefaultCoupons is the table used when no coupon file is configured.
func DefaultCoupons() []models.Coupon {
	return []models.Coupon{
		{Code: "PROMO10", Type: CouponPercent, Value: 10, Label: "10% OFF"},
		{Code: "DESC5", Type: CouponValue, Value: 5, Label: "R$ 5,00 OFF"},
	}
}

// CouponBook is a read-only coupon table keyed by upper-case code.
type CouponBook struct {
	coupons map[string]models.Coupon
}

func NewCouponBook(coupons []models.Coupon) *CouponBook {
	book := &CouponBook{coupons: make(map[string]models.Coupon, len(coupons))}
	for _, c := range coupons {
		code := normalizeCode(c.Code)
		if code == "" {
			continue
		}
		c.Code = code
		book.coupons[code] = c
	}
	return book
}

// Lookup matches the code ignoring case and surrounding spaces.
func (b *CouponBook) Lookup(code string) (models.Coupon, bool) {
	if b == nil {
		return models.Coupon{}, false
	}
	c, ok := b.coupons[normalizeCode(code)]
	return c, ok
}

// Len is the number of coupons in the table.
func (b *CouponBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.coupons)
}

// ApplyCoupon resolves the code typed by the cashier. An empty code clears
// the coupon without error; an unknown code also clears it and returns
// ErrInvalidCoupon.
func ApplyCoupon(book *CouponBook, code string) (*models.Coupon, error) {
	if normalizeCode(code) == "" {
		return nil, nil
	}
	c, ok := book.Lookup(code)
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return &c, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
