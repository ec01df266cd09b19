package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardapio/internal/pricing"
	"cardapio/internal/service"
)

/* =========================
   REQUEST DTOs
========================= */

type createPedidoItemRequest struct {
	Kind     string `json:"kind" binding:"omitempty,oneof=product combo"`
	ID       string `json:"id" binding:"required"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" binding:"required"`
}

type createPedidoRequest struct {
	Items []createPedidoItemRequest `json:"items" binding:"required,min=1,dive"`
	Note  string                    `json:"note" binding:"max=500"`
}

/* =========================
   CREATE PEDIDO
========================= */

// CreatePedido takes a customer order from the public menu. Prices sent by
// the client are ignored; every line is priced from the visible menu.
func CreatePedido(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /pedidos"
		defer handlePanic(c, route)

		var req createPedidoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		in := service.PublicOrderInput{
			Items: make([]service.PublicOrderItem, 0, len(req.Items)),
			Note:  req.Note,
		}
		for _, item := range req.Items {
			in.Items = append(in.Items, service.PublicOrderItem{
				Kind:     pricing.Kind(item.Kind),
				ID:       item.ID,
				Size:     item.Size,
				Quantity: item.Quantity,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.Place(ctx, in)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}
