package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
	"cardapio/internal/money"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
)

const maxItemQuantity = 99

type PublicOrderItem struct {
	Kind     pricing.Kind
	ID       string
	Size     string
	Quantity int
}

type PublicOrderInput struct {
	Items []PublicOrderItem
	Note  string
}

// Orders covers the public ordering flow and the admin order screens.
type Orders struct {
	orders  OrderRepository
	numbers Sequence
	menu    MenuSource
	now     func() time.Time
}

func NewOrders(orders OrderRepository, numbers Sequence, menu MenuSource) *Orders {
	return &Orders{orders: orders, numbers: numbers, menu: menu, now: time.Now}
}

// SeedNumbers lifts the order counter to the highest number already
// stored, so numbering continues after data written by older versions.
func (o *Orders) SeedNumbers(ctx context.Context) (int64, error) {
	highest, err := o.orders.MaxNumber(ctx)
	if err != nil {
		return 0, err
	}
	return highest, o.numbers.Seed(ctx, repository.OrderSequence, highest)
}

// Place prices a customer order against the visible menu and stores it as
// solicitado. Client prices are never trusted.
func (o *Orders) Place(ctx context.Context, in PublicOrderInput) (models.Order, error) {
	menu, err := o.menu.Menu(ctx)
	if err != nil {
		return models.Order{}, err
	}

	cart := pricing.Cart{}
	for _, item := range in.Items {
		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			return models.Order{}, invalid("quantity must be between 1 and %d", maxItemQuantity)
		}
		kind := item.Kind
		if kind == "" {
			kind = pricing.KindProduct
		}
		entry, ok := menu.Lookup(kind, strings.TrimSpace(item.ID))
		if !ok {
			return models.Order{}, ErrEntryUnavailable
		}
		for i := 0; i < item.Quantity; i++ {
			if cart, err = cart.Add(entry, strings.TrimSpace(item.Size)); err != nil {
				return models.Order{}, err
			}
		}
	}
	if len(cart) == 0 {
		return models.Order{}, pricing.ErrEmptyCart
	}

	order := pricing.BuildOrder(cart, pricing.ComputeTotals(cart, "", "", "", nil), pricing.OrderMeta{
		Note:      in.Note,
		Status:    models.StatusSolicitado,
		Origin:    models.OriginCardapio,
		CreatedAt: o.now(),
	})

	n, err := o.numbers.Next(ctx, repository.OrderSequence)
	if err != nil {
		return models.Order{}, storeError("number pedido", err)
	}
	order.ID = primitive.NewObjectID()
	order.PedidoNumber = n
	if err := o.orders.Insert(ctx, order); err != nil {
		return models.Order{}, storeError("create pedido", err)
	}
	return order, nil
}

func (o *Orders) List(ctx context.Context, q repository.OrderQuery) ([]models.Order, int64, error) {
	switch q.Filter {
	case "", repository.FilterOpen, repository.FilterClosed:
	default:
		return nil, 0, invalid("unknown filter %s", q.Filter)
	}
	return o.orders.Find(ctx, q)
}

func (o *Orders) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return o.orders.Get(ctx, id)
}

func (o *Orders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	if !pricing.IsStatus(status) {
		return models.Order{}, invalid("unknown status %s", status)
	}
	order, err := o.orders.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	next, err := pricing.Transition(order, status, o.now())
	if err != nil {
		return models.Order{}, err
	}
	if err := o.orders.Replace(ctx, id, next); err != nil {
		return models.Order{}, err
	}
	return next, nil
}

// Edit replaces the lines of an order and recomputes its totals with the
// stored fee and discounts.
func (o *Orders) Edit(ctx context.Context, id primitive.ObjectID, items []models.OrderItem) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, invalid("order needs at least one item")
	}
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" || strings.TrimSpace(item.Name) == "" {
			return models.Order{}, invalid("item productId and name are required")
		}
		if !money.Finite(item.Price.Float()) || item.Price < 0 {
			return models.Order{}, invalid("item %s: price must be a non-negative number", item.ProductID)
		}
	}

	order, err := o.orders.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	edited, err := pricing.EditOrder(order, items, o.now())
	if err != nil {
		return models.Order{}, err
	}
	if err := o.orders.Replace(ctx, id, edited); err != nil {
		return models.Order{}, err
	}
	return edited, nil
}

func (o *Orders) Delete(ctx context.Context, id primitive.ObjectID) error {
	return o.orders.Delete(ctx, id)
}
