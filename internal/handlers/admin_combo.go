package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardapio/internal/service"
)

func GetAllCombos(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/combos"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		combos, err := catalog.Combos(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": combos})
	}
}

/*
POST /admin/api/combos
- multipart: name, categoryId, description, active, image
- discountType, discountValue and a repeated itemId
- item prices are copied from the products at save time
*/
func CreateCombo(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/combos"
		defer handlePanic(c, route)

		form, err := parseMultipartComboRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		defer form.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		combo, err := catalog.CreateCombo(ctx, form.Input, form.Image)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, combo)
	}
}

func UpdateCombo(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/combos/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		form, err := parseMultipartComboRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		defer form.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		combo, err := catalog.UpdateCombo(ctx, id, form.Input, form.Image)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, combo)
	}
}

func SetComboActive(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/combos/:id/active"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req activeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		combo, err := catalog.SetComboActive(ctx, id, *req.Active)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, combo)
	}
}

func DeleteCombo(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/combos/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := catalog.DeleteCombo(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "combo deleted"})
	}
}
