package pricing

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
)

// Visible holds the catalog subsets shown to customers and cashiers.
type Visible struct {
	Categories []models.Category
	Products   []models.Product
	Combos     []models.Combo
}

// ResolveVisibility applies the cascade: an inactive category hides its
// products and combos, and a combo is hidden as soon as one of its items
// points to a product that is inactive or gone. Source order is kept.
func ResolveVisibility(categories []models.Category, products []models.Product, combos []models.Combo) Visible {
	activeCategory := make(map[primitive.ObjectID]bool, len(categories))
	visible := Visible{
		Categories: make([]models.Category, 0, len(categories)),
		Products:   make([]models.Product, 0, len(products)),
		Combos:     make([]models.Combo, 0, len(combos)),
	}

	for _, c := range categories {
		activeCategory[c.ID] = c.Active
		if c.Active {
			visible.Categories = append(visible.Categories, c)
		}
	}

	// Item checks look at the product's own flag only, not its category.
	productActive := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		productActive[p.ID] = p.Active
		if p.Active && activeCategory[p.CategoryID] {
			visible.Products = append(visible.Products, p)
		}
	}

	for _, combo := range combos {
		if !combo.Active || !activeCategory[combo.CategoryID] {
			continue
		}
		if !allItemsActive(combo.Items, productActive) {
			continue
		}
		visible.Combos = append(visible.Combos, combo)
	}

	return visible
}

// ComboVisible reports whether a single combo would survive ResolveVisibility.
func ComboVisible(combo models.Combo, categories []models.Category, products []models.Product) bool {
	v := ResolveVisibility(categories, products, []models.Combo{combo})
	return len(v.Combos) == 1
}

// Entries flattens the visible catalog into menu entries, products first.
func (v Visible) Entries() []Entry {
	entries := make([]Entry, 0, len(v.Products)+len(v.Combos))
	for _, p := range v.Products {
		entries = append(entries, ProductEntry{Product: p})
	}
	for _, c := range v.Combos {
		entries = append(entries, ComboEntry{Combo: c})
	}
	return entries
}

// Lookup finds a visible entry by kind and id.
func (v Visible) Lookup(kind Kind, id string) (Entry, bool) {
	switch kind {
	case KindProduct:
		for _, p := range v.Products {
			if p.ID.Hex() == id {
				return ProductEntry{Product: p}, true
			}
		}
	case KindCombo:
		for _, c := range v.Combos {
			if c.ID.Hex() == id {
				return ComboEntry{Combo: c}, true
			}
		}
	}
	return nil, false
}

func allItemsActive(items []models.ComboItem, productActive map[primitive.ObjectID]bool) bool {
	for _, item := range items {
		if !productActive[item.ProductID] {
			return false
		}
	}
	return true
}
