package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardapio/internal/service"
)

/*
GET /admin/api/categories
- Every category, active or not
*/
func GetAllCategories(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categories, err := catalog.Categories(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

/*
POST /admin/api/categories
- multipart: name, active, image
*/
func CreateCategory(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/categories"
		defer handlePanic(c, route)

		form, err := parseMultipartCategoryRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		defer form.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		category, err := catalog.CreateCategory(ctx, form.Input, form.Image)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}

/*
PUT /admin/api/categories/:id
- Renaming also renames the category on its products and combos
*/
func UpdateCategory(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/categories/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		form, err := parseMultipartCategoryRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		defer form.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		category, err := catalog.UpdateCategory(ctx, id, form.Input, form.Image)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/categories/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := catalog.DeleteCategory(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}
