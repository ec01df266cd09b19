package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
	"cardapio/internal/service"
	"cardapio/internal/storage"
)

type memRepo[T any] struct {
	mu   sync.Mutex
	docs []T
	idOf func(T) primitive.ObjectID
	fail error
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
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memRepo[T]) Replace(ctx context.Context, id primitive.ObjectID, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
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

type memOrders struct {
	*memRepo[models.Order]
	lastQuery repository.OrderQuery
}

func (m *memOrders) Find(ctx context.Context, q repository.OrderQuery) ([]models.Order, int64, error) {
	m.lastQuery = q
	docs, _ := m.List(ctx)
	return docs, int64(len(docs)), nil
}

func (m *memOrders) MaxNumber(ctx context.Context) (int64, error) {
	return 0, nil
}

type memSequence struct {
	mu sync.Mutex
	n  int64
}

func (s *memSequence) Next(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n, nil
}

func (s *memSequence) Seed(ctx context.Context, name string, value int64) error {
	return nil
}

type nopUploader struct{}

func (nopUploader) Upload(ctx context.Context, img storage.Image, folder string) (storage.Asset, error) {
	id := folder + "/" + img.Filename
	return storage.Asset{URL: "https://img.test/" + id, PublicID: id}, nil
}

func (nopUploader) Delete(ctx context.Context, publicID string) error { return nil }

type testServer struct {
	router     *gin.Engine
	categories *memRepo[models.Category]
	products   *memRepo[models.Product]
	orders     *memOrders
	category   models.Category
	shake      models.Product
	acai       models.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := models.Category{ID: primitive.NewObjectID(), Name: "Milkshakes", Active: true}
	shake := models.Product{
		ID: primitive.NewObjectID(), Name: "Shake", CategoryID: cat.ID, Category: cat.Name,
		Active: true, Price: models.AmountPtr(10),
	}
	acai := models.Product{
		ID: primitive.NewObjectID(), Name: "Açaí", CategoryID: cat.ID, Category: cat.Name, Active: true,
		Sizes: []models.Size{{Size: "P", Price: 8}, {Size: "G", Price: 14}},
	}

	ts := &testServer{
		categories: &memRepo[models.Category]{docs: []models.Category{cat}, idOf: func(c models.Category) primitive.ObjectID { return c.ID }},
		products:   &memRepo[models.Product]{docs: []models.Product{shake, acai}, idOf: func(p models.Product) primitive.ObjectID { return p.ID }},
		orders:     &memOrders{memRepo: &memRepo[models.Order]{idOf: func(o models.Order) primitive.ObjectID { return o.ID }}},
		category:   cat,
		shake:      shake,
		acai:       acai,
	}
	combos := &memRepo[models.Combo]{idOf: func(c models.Combo) primitive.ObjectID { return c.ID }}
	numbers := &memSequence{}

	catalog := service.NewCatalog(ts.categories, ts.products, combos, nopUploader{})
	orders := service.NewOrders(ts.orders, numbers, catalog)
	checkout := service.NewCheckout(service.NewMemorySessionStore(time.Hour), catalog, ts.orders, numbers,
		pricing.NewCouponBook(pricing.DefaultCoupons()))
	feed := service.NewMenuFeed(catalog)

	r := gin.New()
	r.GET("/menu", GetMenu(feed, catalog))
	r.POST("/pedidos", CreatePedido(orders))

	caixa := r.Group("/caixa")
	caixa.POST("/sessions", OpenSession(checkout))
	caixa.GET("/sessions/:id", GetSession(checkout))
	caixa.DELETE("/sessions/:id", ClearSession(checkout))
	caixa.POST("/sessions/:id/items", AddSessionItem(checkout))
	caixa.PATCH("/sessions/:id/items/:lineId", ChangeSessionItemQuantity(checkout))
	caixa.DELETE("/sessions/:id/items/:lineId", RemoveSessionItem(checkout))
	caixa.PUT("/sessions/:id/adjustments", SetSessionAdjustments(checkout))
	caixa.POST("/sessions/:id/coupon", ApplySessionCoupon(checkout))
	caixa.POST("/sessions/:id/load/:pedidoId", LoadSessionOrder(checkout))
	caixa.POST("/sessions/:id/finalize", FinalizeSession(checkout))

	admin := r.Group("/admin/api")
	admin.GET("/categories", GetAllCategories(catalog))
	admin.POST("/products", CreateProduct(catalog))
	admin.PATCH("/products/:id/active", SetProductActive(catalog))
	admin.GET("/pedidos", GetAllOrders(orders))
	admin.GET("/pedidos/:id", GetOrder(orders))
	admin.PATCH("/pedidos/:id/status", UpdateOrderStatus(orders))
	admin.PUT("/pedidos/:id", EditOrder(orders))
	admin.DELETE("/pedidos/:id", DeleteOrder(orders))

	ts.router = r
	return ts
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
