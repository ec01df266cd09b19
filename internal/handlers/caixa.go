package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cardapio/internal/pricing"
	"cardapio/internal/service"
)

/* =========================
   REQUEST DTOs
========================= */

type addItemRequest struct {
	ProductID string `json:"productId"`
	ComboID   string `json:"comboId"`
	Size      string `json:"size"`
}

type quantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type adjustmentsRequest struct {
	Note            *string `json:"note"`
	DeliveryFee     *string `json:"deliveryFee"`
	DiscountPercent *string `json:"discountPercent"`
	DiscountValue   *string `json:"discountValue"`
	PaymentMethod   *string `json:"paymentMethod"`
}

type couponRequest struct {
	Code string `json:"code"`
}

// sessionView is a checkout session with its live totals.
type sessionView struct {
	service.Session
	Totals pricing.Totals `json:"totals"`
}

func viewOf(s service.Session) sessionView {
	return sessionView{Session: s, Totals: s.Totals()}
}

func sessionTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 5*time.Second)
}

/* =========================
   SESSION
========================= */

func OpenSession(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /caixa/sessions"
		defer handlePanic(c, route)

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.Open(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, viewOf(session))
	}
}

func GetSession(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /caixa/sessions/:id"
		defer handlePanic(c, route)

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.Get(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

// ClearSession empties the cart and the note; the rest of the form stays.
func ClearSession(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /caixa/sessions/:id"
		defer handlePanic(c, route)

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.Clear(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

/* =========================
   CART
========================= */

func AddSessionItem(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /caixa/sessions/:id/items"
		defer handlePanic(c, route)

		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		kind, entryID := pricing.KindProduct, strings.TrimSpace(req.ProductID)
		if combo := strings.TrimSpace(req.ComboID); combo != "" {
			kind, entryID = pricing.KindCombo, combo
		}
		if entryID == "" {
			respondWithError(c, http.StatusBadRequest, route, "productId or comboId is required")
			return
		}

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.AddEntry(ctx, c.Param("id"), kind, entryID, req.Size)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

func ChangeSessionItemQuantity(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /caixa/sessions/:id/items/:lineId"
		defer handlePanic(c, route)

		var req quantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.ChangeQuantity(ctx, c.Param("id"), c.Param("lineId"), req.Delta)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

func RemoveSessionItem(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /caixa/sessions/:id/items/:lineId"
		defer handlePanic(c, route)

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.RemoveLine(ctx, c.Param("id"), c.Param("lineId"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

/* =========================
   FORM
========================= */

func SetSessionAdjustments(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /caixa/sessions/:id/adjustments"
		defer handlePanic(c, route)

		var req adjustmentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.SetAdjustments(ctx, c.Param("id"), service.AdjustmentsInput(req))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

// ApplySessionCoupon answers 422 "Cupom inválido." for an unknown code and
// still returns the session, now without a coupon.
func ApplySessionCoupon(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /caixa/sessions/:id/coupon"
		defer handlePanic(c, route)

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.ApplyCoupon(ctx, c.Param("id"), req.Code)
		if errors.Is(err, pricing.ErrInvalidCoupon) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   err.Error(),
				"session": viewOf(session),
			})
			return
		}
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

func LoadSessionOrder(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /caixa/sessions/:id/load/:pedidoId"
		defer handlePanic(c, route)

		ctx, cancel := sessionTimeout(c)
		defer cancel()

		session, err := checkout.LoadOrder(ctx, c.Param("id"), c.Param("pedidoId"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, viewOf(session))
	}
}

/*
POST /caixa/sessions/:id/finalize
- 422 for an empty cart or a missing payment method, nothing is written
- 502 when the order could not be stored; the session is kept for a retry
- 409 while another finalize holds the session or the order is finalized
*/
func FinalizeSession(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /caixa/sessions/:id/finalize"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		receipt, err := checkout.Finalize(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, receipt)
	}
}
