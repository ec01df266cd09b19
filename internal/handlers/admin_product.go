package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardapio/internal/service"
)

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func GetAllProducts(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		products, err := catalog.Products(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

/*
POST /admin/api/products
- multipart: name, categoryId, description, active, price
- sized products send sizeLabel/sizePrice pairs instead of price
*/
func CreateProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		form, err := parseMultipartProductRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		defer form.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		product, err := catalog.CreateProduct(ctx, form.Input, form.Image)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		form, err := parseMultipartProductRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		defer form.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		product, err := catalog.UpdateProduct(ctx, id, form.Input, form.Image)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func SetProductActive(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/products/:id/active"
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

		product, err := catalog.SetProductActive(ctx, id, *req.Active)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := catalog.DeleteProduct(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
