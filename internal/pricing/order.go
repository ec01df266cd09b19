package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cardapio/internal/models"
	"cardapio/internal/money"
)

var paymentLabels = map[string]string{
	"pix":    "PIX",
	"money":  "Dinheiro",
	"debit":  "Débito",
	"credit": "Crédito",
}

// PaymentLabel returns the receipt label of a payment method.
func PaymentLabel(method string) (string, bool) {
	label, ok := paymentLabels[method]
	return label, ok
}

var transitions = map[string][]string{
	models.StatusSolicitado: {models.StatusAndamento, models.StatusPreparando, models.StatusCancelado, models.StatusFinalizado},
	models.StatusAndamento:  {models.StatusPreparando, models.StatusConcluido, models.StatusFinalizado},
	models.StatusPreparando: {models.StatusConcluido, models.StatusFinalizado},
	models.StatusConcluido:  {models.StatusFinalizado},
}

// IsStatus reports whether s is a known order status.
func IsStatus(s string) bool {
	switch s {
	case models.StatusSolicitado, models.StatusAndamento, models.StatusPreparando,
		models.StatusConcluido, models.StatusFinalizado, models.StatusCancelado:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. Moves are forward only.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of the order in the new status.
func Transition(o models.Order, to string, now time.Time) (models.Order, error) {
	if !CanTransition(o.Status, to) {
		return o, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = &now
	return o, nil
}

// ValidateFinalize checks what the checkout needs before writing anything.
func ValidateFinalize(cart Cart, paymentMethod string) error {
	if len(cart) == 0 {
		return ErrEmptyCart
	}
	if _, ok := paymentLabels[paymentMethod]; !ok {
		return ErrPaymentRequired
	}
	return nil
}

// OrderMeta carries the fields of an order that do not come from the cart.
type OrderMeta struct {
	Note          string
	PaymentMethod string
	Status        string
	Origin        string
	Coupon        *models.Coupon
	CreatedAt     time.Time
}

// BuildOrder shapes a cart and its totals into the stored order document.
func BuildOrder(cart Cart, totals Totals, meta OrderMeta) models.Order {
	items := make([]models.OrderItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, models.OrderItem{
			ProductID:  line.ID,
			Name:       line.Name,
			Qty:        line.Quantity,
			Price:      models.Amount(line.Price),
			TotalItem:  models.Amount(lineTotal(line.Price, line.Quantity)),
			Size:       line.Size,
			IsCombo:    line.IsCombo,
			CategoryID: line.CategoryID,
			ImageURL:   line.ImageURL,
		})
	}

	return models.Order{
		Itens:               items,
		Note:                strings.TrimSpace(meta.Note),
		PaymentMethod:       meta.PaymentMethod,
		Subtotal:            models.Amount(totals.Subtotal),
		DeliveryFee:         models.Amount(totals.DeliveryFee),
		DiscountPercent:     models.Amount(totals.DiscountPercent),
		DiscountFromPercent: models.Amount(totals.DiscountFromPercent),
		DiscountValueManual: models.Amount(totals.DiscountValueManual),
		Coupon:              meta.Coupon,
		CouponDiscountValue: models.Amount(totals.CouponDiscountValue),
		TotalDiscounts:      models.Amount(totals.TotalDiscounts),
		Total:               models.Amount(totals.Total),
		Status:              meta.Status,
		Origin:              meta.Origin,
		CreatedAt:           meta.CreatedAt,
	}
}

// FinalizeExisting merges a checkout payload into an order that already
// exists and marks it finalized. Identity, number, origin and creation
// time stay with the stored order. Finalized orders are read-only.
func FinalizeExisting(existing, payload models.Order, now time.Time) (models.Order, error) {
	if existing.Status == models.StatusFinalizado {
		return existing, ErrOrderFinalized
	}
	if existing.Status == models.StatusCancelado {
		return existing, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, models.StatusFinalizado)
	}
	merged := payload
	merged.ID = existing.ID
	merged.PedidoNumber = existing.PedidoNumber
	merged.CreatedAt = existing.CreatedAt
	if existing.Origin != "" {
		merged.Origin = existing.Origin
	}
	merged.Status = models.StatusFinalizado
	merged.UpdatedAt = &now
	return merged, nil
}

// EditOrder replaces the lines of an open order and recomputes its totals
// with the delivery fee and discounts already stored on it.
func EditOrder(o models.Order, items []models.OrderItem, now time.Time) (models.Order, error) {
	if o.Status == models.StatusFinalizado {
		return o, ErrOrderFinalized
	}
	for _, item := range items {
		if item.Qty < 1 {
			return o, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ProductID)
		}
	}
	o.Itens = append([]models.OrderItem(nil), items...)
	o = RecalculateOrder(o)
	o.UpdatedAt = &now
	return o, nil
}

// RecalculateOrder derives every totalItem and the order totals from the
// lines, using the same rules as the checkout.
func RecalculateOrder(o models.Order) models.Order {
	subtotal := decimal.Zero
	items := make([]models.OrderItem, len(o.Itens))
	for i, item := range o.Itens {
		total := money.FromFloat(item.Price.Float()).Mul(decimal.NewFromInt(int64(item.Qty)))
		item.TotalItem = models.Amount(money.Float(total))
		items[i] = item
		subtotal = subtotal.Add(total)
	}
	o.Itens = items

	totals := Apply(subtotal, Adjustments{
		DeliveryFee:     money.FromFloat(o.DeliveryFee.Float()),
		DiscountPercent: money.FromFloat(o.DiscountPercent.Float()),
		DiscountValue:   money.FromFloat(o.DiscountValueManual.Float()),
		Coupon:          o.Coupon,
	})
	o.Subtotal = models.Amount(totals.Subtotal)
	o.DiscountFromPercent = models.Amount(totals.DiscountFromPercent)
	o.CouponDiscountValue = models.Amount(totals.CouponDiscountValue)
	o.TotalDiscounts = models.Amount(totals.TotalDiscounts)
	o.Total = models.Amount(totals.Total)
	return o
}

// CartFromOrder turns stored order lines back into a cart so the cashier can
// keep working on the order.
func CartFromOrder(o models.Order) Cart {
	cart := make(Cart, 0, len(o.Itens))
	for _, item := range o.Itens {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		cart = append(cart, LineItem{
			ID:         item.ProductID,
			EntryID:    entryIDFromLine(item.ProductID, item.Size),
			Name:       item.Name,
			Price:      item.Price.Float(),
			Quantity:   qty,
			Size:       item.Size,
			CategoryID: item.CategoryID,
			IsCombo:    item.IsCombo,
			ImageURL:   item.ImageURL,
		})
	}
	return cart
}

func entryIDFromLine(lineID, size string) string {
	if size == "" {
		return lineID
	}
	return strings.TrimSuffix(lineID, "-"+size)
}

func lineTotal(price float64, qty int) float64 {
	return money.Float(money.FromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
}
