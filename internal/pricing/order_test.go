package pricing

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
)

func TestValidateFinalize(t *testing.T) {
	if err := ValidateFinalize(Cart{}, "pix"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if err := ValidateFinalize(scenarioCart(), ""); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
	if err := ValidateFinalize(scenarioCart(), "boleto"); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired for unknown method, got %v", err)
	}
	if err := ValidateFinalize(scenarioCart(), "credit"); err != nil {
		t.Fatalf("expected valid checkout, got %v", err)
	}
}

func TestBuildOrderCopiesTotals(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cart := Cart{{ID: "x-P", EntryID: "x", Name: "Açaí (P)", Price: 8, Quantity: 3, Size: "P"}}
	totals := ComputeTotals(cart, "2", "", "1", nil)

	o := BuildOrder(cart, totals, OrderMeta{
		Note:          "  sem granola ",
		PaymentMethod: "money",
		Status:        models.StatusFinalizado,
		Origin:        models.OriginCaixa,
		CreatedAt:     now,
	})

	if len(o.Itens) != 1 || o.Itens[0].TotalItem != 24 || o.Itens[0].Size != "P" {
		t.Fatalf("unexpected items: %+v", o.Itens)
	}
	if o.Subtotal != 24 || o.DeliveryFee != 2 || o.DiscountValueManual != 1 || o.Total != 25 {
		t.Fatalf("unexpected totals: %+v", o)
	}
	if o.Note != "sem granola" || o.Status != models.StatusFinalizado || !o.CreatedAt.Equal(now) {
		t.Fatalf("unexpected meta: %+v", o)
	}
}

func TestTransitions(t *testing.T) {
	now := time.Now()
	tests := []struct {
		from, to string
		ok       bool
	}{
		{models.StatusSolicitado, models.StatusAndamento, true},
		{models.StatusSolicitado, models.StatusCancelado, true},
		{models.StatusAndamento, models.StatusConcluido, true},
		{models.StatusConcluido, models.StatusFinalizado, true},
		{models.StatusFinalizado, models.StatusSolicitado, false},
		{models.StatusCancelado, models.StatusAndamento, false},
		{models.StatusConcluido, models.StatusPreparando, false},
		{models.StatusAndamento, models.StatusCancelado, false},
	}
	for _, tt := range tests {
		got, err := Transition(models.Order{Status: tt.from}, tt.to, now)
		if tt.ok {
			if err != nil || got.Status != tt.to || got.UpdatedAt == nil {
				t.Fatalf("%s -> %s: expected success, got %+v err=%v", tt.from, tt.to, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) || got.Status != tt.from {
			t.Fatalf("%s -> %s: expected rejection, got %+v err=%v", tt.from, tt.to, got, err)
		}
	}
}

func TestIsStatus(t *testing.T) {
	if !IsStatus(models.StatusPreparando) || IsStatus("entregue") {
		t.Fatal("unexpected status recognition")
	}
}

func TestFinalizeExistingKeepsIdentity(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := models.Order{
		ID:           primitive.NewObjectID(),
		PedidoNumber: 42,
		Status:       models.StatusAndamento,
		Origin:       models.OriginCardapio,
		CreatedAt:    created,
	}
	payload := BuildOrder(scenarioCart(), ComputeTotals(scenarioCart(), "", "", "", nil), OrderMeta{
		PaymentMethod: "pix",
		Origin:        models.OriginCaixa,
		CreatedAt:     time.Now(),
	})

	now := time.Now()
	merged, err := FinalizeExisting(existing, payload, now)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if merged.ID != existing.ID || merged.PedidoNumber != 42 || !merged.CreatedAt.Equal(created) {
		t.Fatalf("identity lost: %+v", merged)
	}
	if merged.Origin != models.OriginCardapio || merged.Status != models.StatusFinalizado {
		t.Fatalf("unexpected origin/status: %+v", merged)
	}
	if merged.Total != 25.5 || merged.PaymentMethod != "pix" || merged.UpdatedAt == nil {
		t.Fatalf("payload not merged: %+v", merged)
	}

	if _, err := FinalizeExisting(models.Order{Status: models.StatusCancelado}, payload, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected cancelled order to be rejected, got %v", err)
	}
	done := existing
	done.Status = models.StatusFinalizado
	done.Total = 10
	got, err := FinalizeExisting(done, payload, now)
	if !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("expected finalized order to be read-only, got %v", err)
	}
	if got.Total != 10 {
		t.Fatalf("finalized order changed: %+v", got)
	}
}

func TestEditOrderRecomputesWithStoredAdjustments(t *testing.T) {
	o := models.Order{
		Status:          models.StatusSolicitado,
		DeliveryFee:     3,
		DiscountPercent: 10,
		Coupon:          &models.Coupon{Code: "DESC5", Type: CouponValue, Value: 5},
		Itens: []models.OrderItem{
			{ProductID: "a", Price: 1, Qty: 1, TotalItem: 1},
		},
	}
	items := []models.OrderItem{
		{ProductID: "a", Price: 10, Qty: 2},
		{ProductID: "b", Price: 5.5, Qty: 1},
	}

	edited, err := EditOrder(o, items, time.Now())
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if edited.Itens[0].TotalItem != 20 || edited.Itens[1].TotalItem != 5.5 {
		t.Fatalf("line totals not derived: %+v", edited.Itens)
	}
	if edited.Subtotal != 25.5 || edited.DiscountFromPercent != 2.55 || edited.CouponDiscountValue != 5 {
		t.Fatalf("unexpected breakdown: %+v", edited)
	}
	if edited.TotalDiscounts != 7.55 || edited.Total != 20.95 {
		t.Fatalf("expected checkout totals, got discounts=%v total=%v", edited.TotalDiscounts, edited.Total)
	}
	if edited.UpdatedAt == nil {
		t.Fatal("expected updatedAt to be stamped")
	}
	if o.Itens[0].Price != 1 {
		t.Fatal("original order must not change")
	}
}

func TestEditOrderRejects(t *testing.T) {
	if _, err := EditOrder(models.Order{Status: models.StatusFinalizado}, nil, time.Now()); !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("expected ErrOrderFinalized, got %v", err)
	}
	items := []models.OrderItem{{ProductID: "a", Price: 2, Qty: 0}}
	if _, err := EditOrder(models.Order{Status: models.StatusSolicitado}, items, time.Now()); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCartFromOrder(t *testing.T) {
	o := models.Order{Itens: []models.OrderItem{
		{ProductID: "abc-G", Name: "Açaí (G)", Price: 14, Qty: 2, Size: "G"},
		{ProductID: "def", Name: "Combo", Price: 20, Qty: 0, IsCombo: true},
	}}

	cart := CartFromOrder(o)
	if len(cart) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart))
	}
	if cart[0].EntryID != "abc" || cart[0].ID != "abc-G" || cart[0].Quantity != 2 {
		t.Fatalf("unexpected sized line: %+v", cart[0])
	}
	if cart[1].Quantity != 1 || !cart[1].IsCombo {
		t.Fatalf("unexpected combo line: %+v", cart[1])
	}

	next, err := cart.ChangeQuantity("abc-G", 1)
	if err != nil || next[0].Quantity != 3 {
		t.Fatalf("expected loaded lines to be editable, got %+v err=%v", next, err)
	}
}

func TestPaymentLabel(t *testing.T) {
	if label, ok := PaymentLabel("debit"); !ok || label != "Débito" {
		t.Fatalf("unexpected label %q", label)
	}
	if _, ok := PaymentLabel("cheque"); ok {
		t.Fatal("unexpected label for unknown method")
	}
}
