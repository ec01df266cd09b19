package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"cardapio/internal/models"
	"cardapio/internal/money"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
	"cardapio/internal/storage"
)

const (
	categoryFolder = "categories"
	productFolder  = "products"
	comboFolder    = "combos"
)

type CategoryInput struct {
	Name   *string
	Active *bool
}

// ProductInput carries the fields sent by the admin form. Nil pointers are
// left untouched on update.
type ProductInput struct {
	Name        *string
	CategoryID  *string
	Description *string
	Active      *bool
	Price       *float64
	Sizes       []models.Size
	SizesSet    bool
}

type ComboInput struct {
	Name          *string
	CategoryID    *string
	Description   *string
	Active        *bool
	DiscountType  *string
	DiscountValue *float64
	ItemIDs       []string
	ItemsSet      bool
}

// Catalog owns categories, products and combos, and their images.
type Catalog struct {
	categories Repository[models.Category]
	products   Repository[models.Product]
	combos     Repository[models.Combo]
	uploader   storage.Uploader
	now        func() time.Time
}

func NewCatalog(
	categories Repository[models.Category],
	products Repository[models.Product],
	combos Repository[models.Combo],
	uploader storage.Uploader,
) *Catalog {
	return &Catalog{
		categories: categories,
		products:   products,
		combos:     combos,
		uploader:   uploader,
		now:        time.Now,
	}
}

// Menu loads the three collections and resolves what customers may see.
func (c *Catalog) Menu(ctx context.Context) (pricing.Visible, error) {
	categories, err := c.categories.List(ctx)
	if err != nil {
		return pricing.Visible{}, storeError("list categories", err)
	}
	products, err := c.products.List(ctx)
	if err != nil {
		return pricing.Visible{}, storeError("list products", err)
	}
	combos, err := c.combos.List(ctx)
	if err != nil {
		return pricing.Visible{}, storeError("list combos", err)
	}
	return pricing.ResolveVisibility(categories, products, combos), nil
}

func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	return c.categories.List(ctx)
}

func (c *Catalog) Products(ctx context.Context) ([]models.Product, error) {
	return c.products.List(ctx)
}

func (c *Catalog) Combos(ctx context.Context) ([]models.Combo, error) {
	return c.combos.List(ctx)
}

/* ---------- categories ---------- */

func (c *Catalog) CreateCategory(ctx context.Context, in CategoryInput, img *storage.Image) (models.Category, error) {
	name := trimmed(in.Name)
	if name == "" {
		return models.Category{}, invalid("name required")
	}

	cat := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Active:    boolOr(in.Active, true),
		CreatedAt: c.now(),
	}

	err := c.withImage(ctx, img, categoryFolder, func(asset storage.Asset) error {
		cat.ImageURL, cat.ImagePublicID = asset.URL, asset.PublicID
		return c.categories.Insert(ctx, cat)
	})
	return cat, err
}

func (c *Catalog) UpdateCategory(ctx context.Context, id primitive.ObjectID, in CategoryInput, img *storage.Image) (models.Category, error) {
	existing, err := c.categories.Get(ctx, id)
	if err != nil {
		return models.Category{}, err
	}

	updated := existing
	if in.Name != nil {
		if updated.Name = trimmed(in.Name); updated.Name == "" {
			return models.Category{}, invalid("name cannot be empty")
		}
	}
	if in.Active != nil {
		updated.Active = *in.Active
	}

	err = c.withImage(ctx, img, categoryFolder, func(asset storage.Asset) error {
		if asset.URL != "" {
			updated.ImageURL, updated.ImagePublicID = asset.URL, asset.PublicID
		}
		return c.categories.Replace(ctx, id, updated)
	})
	if err != nil {
		return models.Category{}, err
	}
	c.dropReplacedAsset(ctx, existing.ImagePublicID, updated.ImagePublicID)

	if updated.Name != existing.Name {
		c.renameCategoryRefs(ctx, id, updated.Name)
	}
	return updated, nil
}

// DeleteCategory removes the category right away. Products and combos that
// point to it stay in the store and simply stop being visible.
func (c *Catalog) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	existing, err := c.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.categories.Delete(ctx, id); err != nil {
		return err
	}
	c.deleteAsset(ctx, existing.ImagePublicID)
	return nil
}

// renameCategoryRefs keeps the display name copied on products and combos
// in line with the category. Failures are logged only; visibility does not
// depend on the name.
func (c *Catalog) renameCategoryRefs(ctx context.Context, id primitive.ObjectID, name string) {
	products, err := c.products.List(ctx)
	if err != nil {
		zap.L().Warn("rename category: list products failed", zap.Error(err))
		return
	}
	for _, p := range products {
		if p.CategoryID != id {
			continue
		}
		p.Category = name
		if err := c.products.Replace(ctx, p.ID, p); err != nil {
			zap.L().Warn("rename category: product update failed", zap.String("id", p.ID.Hex()), zap.Error(err))
		}
	}

	combos, err := c.combos.List(ctx)
	if err != nil {
		zap.L().Warn("rename category: list combos failed", zap.Error(err))
		return
	}
	for _, combo := range combos {
		if combo.CategoryID != id {
			continue
		}
		combo.Category = name
		if err := c.combos.Replace(ctx, combo.ID, combo); err != nil {
			zap.L().Warn("rename category: combo update failed", zap.String("id", combo.ID.Hex()), zap.Error(err))
		}
	}
}

/* ---------- products ---------- */

func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput, img *storage.Image) (models.Product, error) {
	name := trimmed(in.Name)
	if name == "" {
		return models.Product{}, invalid("name required")
	}
	if in.CategoryID == nil {
		return models.Product{}, invalid("categoryId required")
	}
	cat, err := c.lookupCategory(ctx, *in.CategoryID)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		CategoryID:  cat.ID,
		Category:    cat.Name,
		Active:      boolOr(in.Active, true),
		Description: trimmed(in.Description),
		CreatedAt:   c.now(),
	}
	if err := applyProductPrices(&p, in); err != nil {
		return models.Product{}, err
	}
	if len(p.Sizes) == 0 && p.Price == nil {
		return models.Product{}, invalid("price or sizes required")
	}

	err = c.withImage(ctx, img, productFolder, func(asset storage.Asset) error {
		p.ImageURL, p.ImagePublicID = asset.URL, asset.PublicID
		return c.products.Insert(ctx, p)
	})
	return p, err
}

func (c *Catalog) UpdateProduct(ctx context.Context, id primitive.ObjectID, in ProductInput, img *storage.Image) (models.Product, error) {
	existing, err := c.products.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	updated := existing
	if in.Name != nil {
		if updated.Name = trimmed(in.Name); updated.Name == "" {
			return models.Product{}, invalid("name cannot be empty")
		}
	}
	if in.CategoryID != nil {
		cat, err := c.lookupCategory(ctx, *in.CategoryID)
		if err != nil {
			return models.Product{}, err
		}
		updated.CategoryID, updated.Category = cat.ID, cat.Name
	}
	if in.Description != nil {
		updated.Description = trimmed(in.Description)
	}
	if in.Active != nil {
		updated.Active = *in.Active
	}
	if err := applyProductPrices(&updated, in); err != nil {
		return models.Product{}, err
	}
	if len(updated.Sizes) == 0 && updated.Price == nil && updated.FinalPrice == nil && updated.OriginalPrice == nil {
		return models.Product{}, invalid("price or sizes required")
	}

	err = c.withImage(ctx, img, productFolder, func(asset storage.Asset) error {
		if asset.URL != "" {
			updated.ImageURL, updated.ImagePublicID = asset.URL, asset.PublicID
		}
		return c.products.Replace(ctx, id, updated)
	})
	if err != nil {
		return models.Product{}, err
	}
	c.dropReplacedAsset(ctx, existing.ImagePublicID, updated.ImagePublicID)
	return updated, nil
}

func (c *Catalog) SetProductActive(ctx context.Context, id primitive.ObjectID, active bool) (models.Product, error) {
	p, err := c.products.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	p.Active = active
	if err := c.products.Replace(ctx, id, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	existing, err := c.products.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.products.Delete(ctx, id); err != nil {
		return err
	}
	c.deleteAsset(ctx, existing.ImagePublicID)
	return nil
}

func applyProductPrices(p *models.Product, in ProductInput) error {
	if in.SizesSet {
		sizes, err := cleanSizes(in.Sizes)
		if err != nil {
			return err
		}
		p.Sizes = sizes
	}
	if in.Price != nil {
		if !money.Finite(*in.Price) || *in.Price < 0 {
			return invalid("price must be a non-negative number")
		}
		p.Price = models.AmountPtr(*in.Price)
	}
	return nil
}

func cleanSizes(sizes []models.Size) ([]models.Size, error) {
	seen := make(map[string]struct{}, len(sizes))
	out := make([]models.Size, 0, len(sizes))
	for _, s := range sizes {
		label := strings.TrimSpace(s.Size)
		if label == "" {
			return nil, invalid("size label required")
		}
		if _, dup := seen[label]; dup {
			return nil, invalid("duplicate size %s", label)
		}
		if !money.Finite(s.Price.Float()) || s.Price < 0 {
			return nil, invalid("size %s: price must be a non-negative number", label)
		}
		seen[label] = struct{}{}
		out = append(out, models.Size{Size: label, Price: s.Price})
	}
	return out, nil
}

/* ---------- combos ---------- */

func (c *Catalog) CreateCombo(ctx context.Context, in ComboInput, img *storage.Image) (models.Combo, error) {
	name := trimmed(in.Name)
	if name == "" {
		return models.Combo{}, invalid("name required")
	}
	if in.CategoryID == nil {
		return models.Combo{}, invalid("categoryId required")
	}
	if !in.ItemsSet || len(in.ItemIDs) == 0 {
		return models.Combo{}, invalid("combo needs at least one item")
	}
	cat, err := c.lookupCategory(ctx, *in.CategoryID)
	if err != nil {
		return models.Combo{}, err
	}
	items, err := c.snapshotItems(ctx, in.ItemIDs)
	if err != nil {
		return models.Combo{}, err
	}

	combo := models.Combo{
		ID:           primitive.NewObjectID(),
		Name:         name,
		CategoryID:   cat.ID,
		Category:     cat.Name,
		Active:       boolOr(in.Active, true),
		Description:  trimmed(in.Description),
		DiscountType: models.DiscountNone,
		Items:        items,
		CreatedAt:    c.now(),
	}
	if err := applyComboDiscount(&combo, in); err != nil {
		return models.Combo{}, err
	}
	priceCombo(&combo)

	err = c.withImage(ctx, img, comboFolder, func(asset storage.Asset) error {
		combo.ImageURL, combo.ImagePublicID = asset.URL, asset.PublicID
		return c.combos.Insert(ctx, combo)
	})
	return combo, err
}

// UpdateCombo re-snapshots the items when they are sent and always
// recomputes the stored prices from the snapshot.
func (c *Catalog) UpdateCombo(ctx context.Context, id primitive.ObjectID, in ComboInput, img *storage.Image) (models.Combo, error) {
	existing, err := c.combos.Get(ctx, id)
	if err != nil {
		return models.Combo{}, err
	}

	updated := existing
	if in.Name != nil {
		if updated.Name = trimmed(in.Name); updated.Name == "" {
			return models.Combo{}, invalid("name cannot be empty")
		}
	}
	if in.CategoryID != nil {
		cat, err := c.lookupCategory(ctx, *in.CategoryID)
		if err != nil {
			return models.Combo{}, err
		}
		updated.CategoryID, updated.Category = cat.ID, cat.Name
	}
	if in.Description != nil {
		updated.Description = trimmed(in.Description)
	}
	if in.Active != nil {
		updated.Active = *in.Active
	}
	if in.ItemsSet {
		if len(in.ItemIDs) == 0 {
			return models.Combo{}, invalid("combo needs at least one item")
		}
		if updated.Items, err = c.snapshotItems(ctx, in.ItemIDs); err != nil {
			return models.Combo{}, err
		}
	}
	if err := applyComboDiscount(&updated, in); err != nil {
		return models.Combo{}, err
	}
	priceCombo(&updated)

	err = c.withImage(ctx, img, comboFolder, func(asset storage.Asset) error {
		if asset.URL != "" {
			updated.ImageURL, updated.ImagePublicID = asset.URL, asset.PublicID
		}
		return c.combos.Replace(ctx, id, updated)
	})
	if err != nil {
		return models.Combo{}, err
	}
	c.dropReplacedAsset(ctx, existing.ImagePublicID, updated.ImagePublicID)
	return updated, nil
}

func (c *Catalog) SetComboActive(ctx context.Context, id primitive.ObjectID, active bool) (models.Combo, error) {
	combo, err := c.combos.Get(ctx, id)
	if err != nil {
		return models.Combo{}, err
	}
	combo.Active = active
	if err := c.combos.Replace(ctx, id, combo); err != nil {
		return models.Combo{}, err
	}
	return combo, nil
}

func (c *Catalog) DeleteCombo(ctx context.Context, id primitive.ObjectID) error {
	existing, err := c.combos.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.combos.Delete(ctx, id); err != nil {
		return err
	}
	c.deleteAsset(ctx, existing.ImagePublicID)
	return nil
}

// snapshotItems copies name, base price, image and category of each
// product at save time. Later product changes do not reach the combo.
func (c *Catalog) snapshotItems(ctx context.Context, ids []string) ([]models.ComboItem, error) {
	products, err := c.products.List(ctx)
	if err != nil {
		return nil, storeError("list products", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.Hex()] = p
	}

	items := make([]models.ComboItem, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[strings.TrimSpace(id)]
		if !ok {
			return nil, invalid("product %s not found", id)
		}
		items = append(items, models.ComboItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     models.Amount(pricing.BasePrice(p)),
			Image:     p.ImageURL,
			Category:  p.Category,
		})
	}
	return items, nil
}

func applyComboDiscount(combo *models.Combo, in ComboInput) error {
	if in.DiscountType != nil {
		switch t := strings.TrimSpace(*in.DiscountType); t {
		case "", models.DiscountNone:
			combo.DiscountType = models.DiscountNone
		case models.DiscountPercent, models.DiscountValue:
			combo.DiscountType = t
		default:
			return invalid("unknown discount type %s", t)
		}
	}
	if in.DiscountValue != nil {
		if !money.Finite(*in.DiscountValue) || *in.DiscountValue < 0 {
			return invalid("discount must be a non-negative number")
		}
		combo.DiscountValue = models.Amount(*in.DiscountValue)
	}
	if combo.DiscountType == models.DiscountNone {
		combo.DiscountValue = 0
	}
	return nil
}

func priceCombo(combo *models.Combo) {
	prices := pricing.ComboPricing(combo.Items, combo.DiscountType, combo.DiscountValue.Float())
	combo.OriginalPrice = models.AmountPtr(prices.OriginalPrice)
	combo.FinalPrice = models.AmountPtr(prices.FinalPrice)
}

/* ---------- helpers ---------- */

func (c *Catalog) lookupCategory(ctx context.Context, rawID string) (models.Category, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawID))
	if err != nil {
		return models.Category{}, invalid("invalid categoryId")
	}
	cat, err := c.categories.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Category{}, invalid("category not found")
	}
	return cat, err
}

// withImage uploads img (when given) and then runs write. If the write
// fails the fresh upload is deleted again so no orphan is left behind.
func (c *Catalog) withImage(ctx context.Context, img *storage.Image, folder string, write func(storage.Asset) error) error {
	var asset storage.Asset
	if img != nil {
		if _, err := storage.Validate(*img); err != nil {
			return invalid("%v", err)
		}
		uploaded, err := c.uploader.Upload(ctx, *img, folder)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpload, err)
		}
		asset = uploaded
	}

	if err := write(asset); err != nil {
		if asset.PublicID != "" {
			c.deleteAsset(ctx, asset.PublicID)
		}
		return err
	}
	return nil
}

func (c *Catalog) dropReplacedAsset(ctx context.Context, oldID, newID string) {
	if oldID != "" && oldID != newID {
		c.deleteAsset(ctx, oldID)
	}
}

func (c *Catalog) deleteAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := c.uploader.Delete(ctx, publicID); err != nil {
		zap.L().Warn("asset delete failed", zap.String("publicId", publicID), zap.Error(err))
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
