package pricing

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
)

func TestResolveVisibilityCascadesCategory(t *testing.T) {
	on := category(true)
	off := category(false)
	visible := flatProduct(on, 10, true)
	hiddenByCategory := flatProduct(off, 10, true)
	hiddenByFlag := flatProduct(on, 10, false)
	orphan := flatProduct(on, 10, true)
	orphan.CategoryID = primitive.NilObjectID

	v := ResolveVisibility(
		[]models.Category{on, off},
		[]models.Product{visible, hiddenByCategory, hiddenByFlag, orphan},
		nil,
	)

	if len(v.Categories) != 1 || v.Categories[0].ID != on.ID {
		t.Fatalf("expected only the active category, got %+v", v.Categories)
	}
	if len(v.Products) != 1 || v.Products[0].ID != visible.ID {
		t.Fatalf("expected only the visible product, got %+v", v.Products)
	}
}

func TestResolveVisibilityHidesComboWithInactiveItem(t *testing.T) {
	on := category(true)
	a := flatProduct(on, 10, true)
	b := flatProduct(on, 5, false)
	combo := comboOf(on, true, a, b)

	v := ResolveVisibility([]models.Category{on}, []models.Product{a, b}, []models.Combo{combo})
	if len(v.Combos) != 0 {
		t.Fatalf("expected combo with inactive item to be hidden, got %+v", v.Combos)
	}
}

func TestResolveVisibilityHidesComboWithDeletedItem(t *testing.T) {
	on := category(true)
	a := flatProduct(on, 10, true)
	gone := flatProduct(on, 5, true)
	combo := comboOf(on, true, a, gone)

	v := ResolveVisibility([]models.Category{on}, []models.Product{a}, []models.Combo{combo})
	if len(v.Combos) != 0 {
		t.Fatal("expected combo referencing a deleted product to be hidden")
	}
}

func TestResolveVisibilityComboItemIgnoresItemCategory(t *testing.T) {
	on := category(true)
	off := category(false)
	item := flatProduct(off, 10, true)
	combo := comboOf(on, true, item)

	v := ResolveVisibility([]models.Category{on, off}, []models.Product{item}, []models.Combo{combo})
	if len(v.Combos) != 1 {
		t.Fatal("expected combo to stay visible when only the item's category is inactive")
	}
	if len(v.Products) != 0 {
		t.Fatal("expected the item itself to be hidden from the product list")
	}
}

func TestResolveVisibilityComboCategoryAndFlag(t *testing.T) {
	on := category(true)
	off := category(false)
	a := flatProduct(on, 10, true)

	inactive := comboOf(on, false, a)
	wrongCategory := comboOf(off, true, a)
	ok := comboOf(on, true, a)

	v := ResolveVisibility([]models.Category{on, off}, []models.Product{a}, []models.Combo{inactive, wrongCategory, ok})
	if len(v.Combos) != 1 || v.Combos[0].ID != ok.ID {
		t.Fatalf("expected only the active combo in an active category, got %+v", v.Combos)
	}
	if !ComboVisible(ok, []models.Category{on}, []models.Product{a}) {
		t.Fatal("expected ComboVisible to agree with ResolveVisibility")
	}
}

func TestResolveVisibilityKeepsSourceOrder(t *testing.T) {
	on := category(true)
	products := []models.Product{flatProduct(on, 3, true), flatProduct(on, 1, true), flatProduct(on, 2, true)}

	v := ResolveVisibility([]models.Category{on}, products, nil)
	for i := range products {
		if v.Products[i].ID != products[i].ID {
			t.Fatalf("expected source order at %d", i)
		}
	}

	entries := v.Entries()
	if len(entries) != 3 || entries[0].EntryID() != products[0].ID.Hex() {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if _, found := v.Lookup(KindProduct, products[2].ID.Hex()); !found {
		t.Fatal("expected lookup to find a visible product")
	}
	if _, found := v.Lookup(KindCombo, products[2].ID.Hex()); found {
		t.Fatal("expected lookup by the wrong kind to miss")
	}
}
