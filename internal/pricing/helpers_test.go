package pricing

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
)

func category(active bool) models.Category {
	return models.Category{ID: primitive.NewObjectID(), Name: "Milkshakes", Active: active}
}

func flatProduct(cat models.Category, price float64, active bool) models.Product {
	return models.Product{
		ID:         primitive.NewObjectID(),
		Name:       "Milkshake",
		CategoryID: cat.ID,
		Category:   cat.Name,
		Active:     active,
		Price:      models.AmountPtr(price),
	}
}

func sizedProduct(cat models.Category, sizes ...models.Size) models.Product {
	p := flatProduct(cat, 0, true)
	p.Price = nil
	p.Sizes = sizes
	return p
}

func comboOf(cat models.Category, active bool, products ...models.Product) models.Combo {
	items := make([]models.ComboItem, 0, len(products))
	for _, p := range products {
		items = append(items, models.ComboItem{ProductID: p.ID, Name: p.Name, Price: models.Amount(BasePrice(p))})
	}
	prices := ComboPricing(items, models.DiscountNone, 0)
	return models.Combo{
		ID:            primitive.NewObjectID(),
		Name:          "Combo Família",
		CategoryID:    cat.ID,
		Category:      cat.Name,
		Active:        active,
		DiscountType:  models.DiscountNone,
		Items:         items,
		OriginalPrice: models.AmountPtr(prices.OriginalPrice),
		FinalPrice:    models.AmountPtr(prices.FinalPrice),
	}
}
