package pricing

import (
	"errors"
	"testing"

	"cardapio/internal/models"
)

func scenarioCart() Cart {
	return Cart{
		{ID: "a", Price: 10.00, Quantity: 2},
		{ID: "b", Price: 5.50, Quantity: 1},
	}
}

func TestComputeTotalsScenario(t *testing.T) {
	book := NewCouponBook(DefaultCoupons())
	coupon, err := ApplyCoupon(book, "desc5")
	if err != nil {
		t.Fatalf("apply coupon failed: %v", err)
	}

	got := ComputeTotals(scenarioCart(), "3,00", "10", "", coupon)

	want := Totals{
		Subtotal:            25.50,
		DeliveryFee:         3.00,
		DiscountPercent:     10,
		DiscountFromPercent: 2.55,
		DiscountValueManual: 0,
		CouponDiscountValue: 5.00,
		TotalDiscounts:      7.55,
		Total:               20.95,
	}
	if got != want {
		t.Fatalf("unexpected totals:\n got  %+v\n want %+v", got, want)
	}
}

func TestComputeTotalsPercentCoupon(t *testing.T) {
	coupon := &models.Coupon{Code: "PROMO10", Type: CouponPercent, Value: 10}
	got := ComputeTotals(scenarioCart(), "", "", "", coupon)
	if got.CouponDiscountValue != 2.55 || got.Total != 22.95 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestComputeTotalsValueCouponCanExceedSubtotal(t *testing.T) {
	coupon := &models.Coupon{Code: "BIG", Type: CouponValue, Value: 100}
	got := ComputeTotals(Cart{{ID: "a", Price: 4, Quantity: 1}}, "2,00", "", "", coupon)
	if got.CouponDiscountValue != 100 {
		t.Fatalf("expected flat coupon 100, got %v", got.CouponDiscountValue)
	}
	if got.Total != 0 {
		t.Fatalf("expected total floored at 0, got %v", got.Total)
	}
}

func TestComputeTotalsInvalidInputsAreZero(t *testing.T) {
	got := ComputeTotals(scenarioCart(), "abc", "", "--", nil)
	if got.DeliveryFee != 0 || got.DiscountPercent != 0 || got.DiscountValueManual != 0 {
		t.Fatalf("expected zero adjustments, got %+v", got)
	}
	if got.Total != 25.5 {
		t.Fatalf("expected total 25.5, got %v", got.Total)
	}
}

func TestComputeTotalsNonIncreasingInDiscounts(t *testing.T) {
	cart := scenarioCart()
	inputs := []string{"0", "1", "2,5", "10", "50", "99,99", "1000"}

	for _, fee := range []string{"", "3,00", "15"} {
		prev := ComputeTotals(cart, fee, "", "", nil).Total
		for _, pct := range inputs {
			got := ComputeTotals(cart, fee, pct, "", nil).Total
			if got > prev {
				t.Fatalf("percent %s increased total %v -> %v", pct, prev, got)
			}
			if got < 0 {
				t.Fatalf("negative total %v", got)
			}
			prev = got
		}

		prev = ComputeTotals(cart, fee, "", "", nil).Total
		for _, manual := range inputs {
			got := ComputeTotals(cart, fee, "", manual, nil).Total
			if got > prev || got < 0 {
				t.Fatalf("manual %s: total %v after %v", manual, got, prev)
			}
			prev = got
		}

		prev = ComputeTotals(cart, fee, "", "", nil).Total
		for _, v := range []float64{0, 1, 5, 20, 500} {
			got := ComputeTotals(cart, fee, "", "", &models.Coupon{Type: CouponValue, Value: v}).Total
			if got > prev || got < 0 {
				t.Fatalf("coupon %v: total %v after %v", v, got, prev)
			}
			prev = got
		}
	}
}

func TestApplyCoupon(t *testing.T) {
	book := NewCouponBook(DefaultCoupons())

	c, err := ApplyCoupon(book, "  promo10 ")
	if err != nil || c == nil || c.Code != "PROMO10" || c.Type != CouponPercent {
		t.Fatalf("expected PROMO10, got %+v err=%v", c, err)
	}

	c, err = ApplyCoupon(book, "XYZ")
	if !errors.Is(err, ErrInvalidCoupon) || c != nil {
		t.Fatalf("expected invalid coupon, got %+v err=%v", c, err)
	}
	if err.Error() != "Cupom inválido." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	c, err = ApplyCoupon(book, "   ")
	if err != nil || c != nil {
		t.Fatalf("expected empty code to clear without error, got %+v err=%v", c, err)
	}
}

func TestCouponBookSkipsBlankCodes(t *testing.T) {
	book := NewCouponBook([]models.Coupon{{Code: " "}, {Code: "amigo", Type: CouponValue, Value: 3}})
	if book.Len() != 1 {
		t.Fatalf("expected 1 coupon, got %d", book.Len())
	}
	if _, ok := book.Lookup("AMIGO"); !ok {
		t.Fatal("expected lookup to be case-insensitive")
	}
	var nilBook *CouponBook
	if _, ok := nilBook.Lookup("AMIGO"); ok {
		t.Fatal("nil book must not match")
	}
}
