package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cardapio/internal/models"
	"cardapio/internal/repository"
	"cardapio/internal/service"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type orderItemRequest struct {
	ProductID  string  `json:"productId" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Qty        int     `json:"qty" binding:"required,min=1"`
	Price      float64 `json:"price" binding:"min=0"`
	Size       string  `json:"size"`
	IsCombo    bool    `json:"isCombo"`
	CategoryID string  `json:"categoryId"`
	ImageURL   string  `json:"imageUrl"`
}

type editOrderRequest struct {
	Itens []orderItemRequest `json:"itens" binding:"required,min=1,dive"`
}

/*
GET /admin/api/pedidos
- ?filter=abertos|fechados
- ?search= matches item names, status, note or the order number
- ?page=&limit=
*/
func GetAllOrders(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/pedidos"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, total, err := orders.List(ctx, repository.OrderQuery{
			Filter: strings.TrimSpace(c.Query("filter")),
			Search: strings.TrimSpace(c.Query("search")),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		if list == nil {
			list = []models.Order{}
		}

		c.JSON(http.StatusOK, gin.H{
			"data": list,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		})
	}
}

func GetOrder(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/pedidos/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.Get(ctx, id)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderStatus(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/pedidos/:id/status"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.UpdateStatus(ctx, id, strings.TrimSpace(req.Status))
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/*
PUT /admin/api/pedidos/:id
- Replaces the lines; totals are recomputed with the stored fee and discounts
- Finalized orders are rejected
*/
func EditOrder(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/pedidos/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req editOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		items := make([]models.OrderItem, 0, len(req.Itens))
		for _, item := range req.Itens {
			items = append(items, models.OrderItem{
				ProductID:  strings.TrimSpace(item.ProductID),
				Name:       strings.TrimSpace(item.Name),
				Qty:        item.Qty,
				Price:      models.Amount(item.Price),
				Size:       strings.TrimSpace(item.Size),
				IsCombo:    item.IsCombo,
				CategoryID: item.CategoryID,
				ImageURL:   item.ImageURL,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.Edit(ctx, id, items)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/pedidos/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := orders.Delete(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
