package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
	"cardapio/internal/repository"
	"cardapio/internal/storage"
)

var errBoom = errors.New("boom")

type memRepo[T any] struct {
	mu          sync.Mutex
	docs        []T
	idOf        func(T) primitive.ObjectID
	failInsert  error
	failReplace error
	// beforeInsert runs outside the lock, ahead of every Insert.
	beforeInsert func()
}

func (m *memRepo[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.docs...), nil
}

func (m *memRepo[T]) Get(ctx context.Context, id primitive.ObjectID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if m.idOf(d) == id {
			return d, nil
		}
	}
	var zero T
	return zero, repository.ErrNotFound
}

func (m *memRepo[T]) Insert(ctx context.Context, doc T) error {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return m.failInsert
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memRepo[T]) Replace(ctx context.Context, id primitive.ObjectID, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReplace != nil {
		return m.failReplace
	}
	for i, d := range m.docs {
		if m.idOf(d) == id {
			m.docs[i] = doc
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memRepo[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs {
		if m.idOf(d) == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func newCategoryRepo(docs ...models.Category) *memRepo[models.Category] {
	return &memRepo[models.Category]{docs: docs, idOf: func(c models.Category) primitive.ObjectID { return c.ID }}
}

func newProductRepo(docs ...models.Product) *memRepo[models.Product] {
	return &memRepo[models.Product]{docs: docs, idOf: func(p models.Product) primitive.ObjectID { return p.ID }}
}

func newComboRepo(docs ...models.Combo) *memRepo[models.Combo] {
	return &memRepo[models.Combo]{docs: docs, idOf: func(c models.Combo) primitive.ObjectID { return c.ID }}
}

type memOrders struct {
	*memRepo[models.Order]
	lastQuery repository.OrderQuery
}

func newOrderRepo(docs ...models.Order) *memOrders {
	return &memOrders{memRepo: &memRepo[models.Order]{docs: docs, idOf: func(o models.Order) primitive.ObjectID { return o.ID }}}
}

func (m *memOrders) Find(ctx context.Context, q repository.OrderQuery) ([]models.Order, int64, error) {
	m.lastQuery = q
	docs, _ := m.List(ctx)
	return docs, int64(len(docs)), nil
}

func (m *memOrders) MaxNumber(ctx context.Context) (int64, error) {
	docs, _ := m.List(ctx)
	var highest int64
	for _, o := range docs {
		if o.PedidoNumber > highest {
			highest = o.PedidoNumber
		}
	}
	return highest, nil
}

type memSequence struct {
	mu   sync.Mutex
	seqs map[string]int64
	err  error
}

func newSequence() *memSequence {
	return &memSequence{seqs: map[string]int64{}}
}

func (s *memSequence) Next(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.seqs[name]++
	return s.seqs[name], nil
}

func (s *memSequence) Seed(ctx context.Context, name string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value > s.seqs[name] {
		s.seqs[name] = value
	}
	return nil
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []storage.Asset
	deleted  []string
	fail     error
}

func (f *fakeUploader) Upload(ctx context.Context, img storage.Image, folder string) (storage.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return storage.Asset{}, f.fail
	}
	id := folder + "/" + primitive.NewObjectID().Hex()
	asset := storage.Asset{URL: "https://img.test/" + id, PublicID: id}
	f.uploaded = append(f.uploaded, asset)
	return asset, nil
}

func (f *fakeUploader) Delete(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fixture struct {
	categories *memRepo[models.Category]
	products   *memRepo[models.Product]
	combos     *memRepo[models.Combo]
	orders     *memOrders
	numbers    *memSequence
	uploader   *fakeUploader
	catalog    *Catalog
}

func newFixture(cats []models.Category, prods []models.Product, combos []models.Combo) *fixture {
	f := &fixture{
		categories: newCategoryRepo(cats...),
		products:   newProductRepo(prods...),
		combos:     newComboRepo(combos...),
		orders:     newOrderRepo(),
		numbers:    newSequence(),
		uploader:   &fakeUploader{},
	}
	f.catalog = NewCatalog(f.categories, f.products, f.combos, f.uploader)
	return f
}

func testCategory(name string, active bool) models.Category {
	return models.Category{ID: primitive.NewObjectID(), Name: name, Active: active}
}

func testProduct(cat models.Category, name string, price float64) models.Product {
	return models.Product{
		ID:         primitive.NewObjectID(),
		Name:       name,
		CategoryID: cat.ID,
		Category:   cat.Name,
		Active:     true,
		Price:      models.AmountPtr(price),
	}
}

func testSizedProduct(cat models.Category, name string, sizes ...models.Size) models.Product {
	p := testProduct(cat, name, 0)
	p.Price = nil
	p.Sizes = sizes
	return p
}

func pngImage() *storage.Image {
	return &storage.Image{Filename: "foto.png", Size: 10}
}

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
