package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"cardapio/internal/models"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
)

// ErrEntryUnavailable is returned when a product or combo is not on the
// visible menu (inactive, hidden by its category, or gone).
var ErrEntryUnavailable = errors.New("item indisponível")

// ErrSessionBusy is returned while a finalize holds the session.
var ErrSessionBusy = errors.New("venda em finalização")

// AdjustmentsInput holds the checkout form fields. Nil leaves a field as is.
type AdjustmentsInput struct {
	Note            *string
	DeliveryFee     *string
	DiscountPercent *string
	DiscountValue   *string
	PaymentMethod   *string
}

// Receipt is what the cashier prints after a sale.
type Receipt struct {
	Order        models.Order `json:"order"`
	PaymentLabel string       `json:"paymentLabel"`
}

// Checkout runs cashier sessions on top of the pricing engine.
type Checkout struct {
	sessions SessionStore
	menu     MenuSource
	orders   OrderRepository
	numbers  Sequence
	coupons  *pricing.CouponBook
	now      func() time.Time
}

func NewCheckout(sessions SessionStore, menu MenuSource, orders OrderRepository, numbers Sequence, coupons *pricing.CouponBook) *Checkout {
	return &Checkout{
		sessions: sessions,
		menu:     menu,
		orders:   orders,
		numbers:  numbers,
		coupons:  coupons,
		now:      time.Now,
	}
}

func (c *Checkout) Open(ctx context.Context) (Session, error) {
	s := Session{ID: uuid.NewString(), Cart: pricing.Cart{}}
	if err := c.sessions.Create(ctx, s); err != nil {
		return Session{}, storeError("create session", err)
	}
	return s, nil
}

func (c *Checkout) Get(ctx context.Context, id string) (Session, error) {
	return c.sessions.Get(ctx, id)
}

// Clear empties the cart and the note. Fee, discounts, coupon and payment
// method are kept, like the clear button on the cashier screen.
func (c *Checkout) Clear(ctx context.Context, id string) (Session, error) {
	return c.update(ctx, id, func(s *Session) error {
		s.Cart = s.Cart.Clear()
		s.Note = ""
		return nil
	})
}

// AddEntry puts one unit of a visible product or combo in the cart.
func (c *Checkout) AddEntry(ctx context.Context, id string, kind pricing.Kind, entryID, size string) (Session, error) {
	menu, err := c.menu.Menu(ctx)
	if err != nil {
		return Session{}, err
	}
	entry, ok := menu.Lookup(kind, strings.TrimSpace(entryID))
	if !ok {
		return Session{}, ErrEntryUnavailable
	}

	return c.update(ctx, id, func(s *Session) error {
		next, err := s.Cart.Add(entry, strings.TrimSpace(size))
		if err != nil {
			return err
		}
		s.Cart = next
		return nil
	})
}

func (c *Checkout) ChangeQuantity(ctx context.Context, id, lineID string, delta int) (Session, error) {
	return c.update(ctx, id, func(s *Session) error {
		next, err := s.Cart.ChangeQuantity(lineID, delta)
		if err != nil {
			return err
		}
		s.Cart = next
		return nil
	})
}

func (c *Checkout) RemoveLine(ctx context.Context, id, lineID string) (Session, error) {
	return c.update(ctx, id, func(s *Session) error {
		if _, ok := s.Cart.Find(lineID); !ok {
			return pricing.ErrLineNotFound
		}
		s.Cart = s.Cart.Remove(lineID)
		return nil
	})
}

func (c *Checkout) SetAdjustments(ctx context.Context, id string, in AdjustmentsInput) (Session, error) {
	if in.PaymentMethod != nil && *in.PaymentMethod != "" {
		if _, ok := pricing.PaymentLabel(*in.PaymentMethod); !ok {
			return Session{}, invalid("unknown payment method %s", *in.PaymentMethod)
		}
	}

	return c.update(ctx, id, func(s *Session) error {
		if in.Note != nil {
			s.Note = *in.Note
		}
		if in.DeliveryFee != nil {
			s.DeliveryFee = *in.DeliveryFee
		}
		if in.DiscountPercent != nil {
			s.DiscountPercent = *in.DiscountPercent
		}
		if in.DiscountValue != nil {
			s.DiscountValue = *in.DiscountValue
		}
		if in.PaymentMethod != nil {
			s.PaymentMethod = *in.PaymentMethod
		}
		return nil
	})
}

// ApplyCoupon sets the session coupon. An unknown code clears any coupon
// already applied and returns pricing.ErrInvalidCoupon with the updated
// session; an empty code just clears it.
func (c *Checkout) ApplyCoupon(ctx context.Context, id, code string) (Session, error) {
	coupon, applyErr := pricing.ApplyCoupon(c.coupons, code)

	s, err := c.update(ctx, id, func(s *Session) error {
		s.Coupon = coupon
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return s, applyErr
}

// LoadOrder replaces the cart and note with those of a stored order so the
// cashier can finish it. A missing order leaves the session untouched.
func (c *Checkout) LoadOrder(ctx context.Context, id, pedidoID string) (Session, error) {
	oid, err := primitive.ObjectIDFromHex(pedidoID)
	if err != nil {
		return Session{}, invalid("invalid pedido id")
	}

	order, err := c.orders.Get(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return c.sessions.Get(ctx, id)
	}
	if err != nil {
		return Session{}, storeError("get pedido", err)
	}
	if order.Status == models.StatusFinalizado {
		return Session{}, pricing.ErrOrderFinalized
	}

	return c.update(ctx, id, func(s *Session) error {
		s.PedidoID = order.ID.Hex()
		s.Cart = pricing.CartFromOrder(order)
		s.Note = order.Note
		return nil
	})
}

// Finalize validates the session, writes the order and resets the session.
// The session is claimed first, so edits and repeated finalizes are
// rejected with ErrSessionBusy until the sale is written. When the write
// fails the claim is dropped and the session is left as it was so the
// cashier can try again.
func (c *Checkout) Finalize(ctx context.Context, id string) (Receipt, error) {
	now := c.now()
	s, err := c.update(ctx, id, func(s *Session) error {
		if err := pricing.ValidateFinalize(s.Cart, s.PaymentMethod); err != nil {
			return err
		}
		s.FinalizingAt = &now
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	payload := pricing.BuildOrder(s.Cart, s.Totals(), pricing.OrderMeta{
		Note:          s.Note,
		PaymentMethod: s.PaymentMethod,
		Status:        models.StatusFinalizado,
		Origin:        models.OriginCaixa,
		Coupon:        s.Coupon,
		CreatedAt:     now,
	})

	order, err := c.persist(ctx, s.PedidoID, payload, now)
	if err != nil {
		if _, releaseErr := c.sessions.Update(ctx, id, func(sess *Session) error {
			sess.FinalizingAt = nil
			return nil
		}); releaseErr != nil {
			zap.L().Warn("finalize: session release failed", zap.String("session", id), zap.Error(releaseErr))
		}
		return Receipt{}, err
	}

	if _, err := c.sessions.Update(ctx, id, func(sess *Session) error {
		*sess = sess.reset()
		return nil
	}); err != nil {
		zap.L().Warn("finalize: session reset failed", zap.String("session", id), zap.Error(err))
	}

	label, _ := pricing.PaymentLabel(order.PaymentMethod)
	return Receipt{Order: order, PaymentLabel: label}, nil
}

// update applies fn to the session unless a finalize holds it.
func (c *Checkout) update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	now := c.now()
	return c.sessions.Update(ctx, id, func(s *Session) error {
		if s.finalizing(now) {
			return ErrSessionBusy
		}
		return fn(s)
	})
}

func (c *Checkout) persist(ctx context.Context, pedidoID string, payload models.Order, now time.Time) (models.Order, error) {
	if pedidoID != "" {
		oid, err := primitive.ObjectIDFromHex(pedidoID)
		if err != nil {
			return models.Order{}, invalid("invalid pedido id")
		}
		existing, err := c.orders.Get(ctx, oid)
		switch {
		case err == nil:
			merged, err := pricing.FinalizeExisting(existing, payload, now)
			if err != nil {
				return models.Order{}, err
			}
			if err := c.orders.Replace(ctx, oid, merged); err != nil {
				return models.Order{}, storeError("finalize pedido", err)
			}
			return merged, nil
		case errors.Is(err, repository.ErrNotFound):
			zap.L().Warn("finalize: loaded pedido is gone, creating a new one", zap.String("pedido", pedidoID))
		default:
			return models.Order{}, storeError("get pedido", err)
		}
	}

	n, err := c.numbers.Next(ctx, repository.OrderSequence)
	if err != nil {
		return models.Order{}, storeError("number pedido", err)
	}
	payload.ID = primitive.NewObjectID()
	payload.PedidoNumber = n
	if err := c.orders.Insert(ctx, payload); err != nil {
		return models.Order{}, storeError("create pedido", err)
	}
	return payload, nil
}
