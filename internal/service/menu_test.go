package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cardapio/internal/models"
	"cardapio/internal/pricing"
)

func TestBuildMenu(t *testing.T) {
	cat := testCategory("Combos", true)
	shake := testProduct(cat, "Shake", 10)
	acai := testSizedProduct(cat, "Açaí", models.Size{Size: "P", Price: 8}, models.Size{Size: "G", Price: 14})
	combo := models.Combo{
		ID:            primitive.NewObjectID(),
		Name:          "Dupla",
		CategoryID:    cat.ID,
		Active:        true,
		Items:         []models.ComboItem{{ProductID: shake.ID, Name: "Shake", Price: 10}, {ProductID: acai.ID, Name: "Açaí", Price: 8}},
		Price:         models.AmountPtr(16),
		OriginalPrice: models.AmountPtr(18),
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	menu := BuildMenu(pricing.ResolveVisibility([]models.Category{cat}, []models.Product{shake, acai}, []models.Combo{combo}), now)
	if len(menu.Categories) != 1 || len(menu.Items) != 3 || !menu.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected menu: %+v", menu)
	}
	byName := map[string]MenuItem{}
	for _, item := range menu.Items {
		byName[item.Name] = item
	}
	if byName["Açaí"].Price != 8 || len(byName["Açaí"].Sizes) != 2 {
		t.Fatalf("sized product should show its lowest price: %+v", byName["Açaí"])
	}
	dupla := byName["Dupla"]
	if dupla.Kind != pricing.KindCombo || dupla.Price != 16 || dupla.OriginalPrice != 18 || len(dupla.Items) != 2 {
		t.Fatalf("unexpected combo item: %+v", dupla)
	}
	if byName["Shake"].CategoryID != cat.ID.Hex() {
		t.Fatalf("unexpected category id %q", byName["Shake"].CategoryID)
	}
}

func waitForMenu(t *testing.T, ch <-chan Menu, want int) Menu {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-ch:
			if len(m.Items) == want {
				return m
			}
		case <-deadline:
			t.Fatalf("no menu with %d items", want)
		}
	}
}

func TestMenuFeedPushesChanges(t *testing.T) {
	cat := testCategory("Lanches", true)
	f := newFixture([]models.Category{cat}, []models.Product{testProduct(cat, "X-Burger", 18)}, nil)
	feed := NewMenuFeed(f.catalog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	ch, unsubscribe := feed.Subscribe()
	defer unsubscribe()
	waitForMenu(t, ch, 1)

	f.products.Insert(ctx, testProduct(cat, "X-Salada", 20))
	feed.Notify()
	waitForMenu(t, ch, 2)

	current, ok := feed.Current()
	if !ok || len(current.Items) != 2 {
		t.Fatalf("unexpected current menu: %+v", current)
	}

	late, stop := feed.Subscribe()
	defer stop()
	select {
	case m := <-late:
		if len(m.Items) != 2 {
			t.Fatalf("late subscriber got %d items", len(m.Items))
		}
	default:
		t.Fatal("late subscriber should get the current menu right away")
	}
}

func TestMenuFeedNotifyNeverBlocks(t *testing.T) {
	feed := NewMenuFeed(newFixture(nil, nil, nil).catalog)
	for i := 0; i < 100; i++ {
		feed.Notify()
	}
	if _, ok := feed.Current(); ok {
		t.Fatal("no menu before Run")
	}
}

type fakeWatchable struct {
	mu       sync.Mutex
	err      error
	onChange func()
	onError  func(error)
	stopped  bool
}

func (w *fakeWatchable) Subscribe(ctx context.Context, onChange func(), onError func(error)) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	w.onChange = onChange
	w.onError = onError
	return func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
	}, nil
}

func TestMenuFeedWatchSubscribesSources(t *testing.T) {
	feed := NewMenuFeed(newFixture(nil, nil, nil).catalog)
	products, combos := &fakeWatchable{}, &fakeWatchable{}

	stop := feed.Watch(context.Background(), time.Hour, products, combos)
	products.onChange()
	select {
	case <-feed.refresh:
	default:
		t.Fatal("change should request a refresh")
	}

	stop()
	if !products.stopped || !combos.stopped {
		t.Fatal("stop should close every subscription")
	}
}

func TestMenuFeedWatchFallsBackToPolling(t *testing.T) {
	feed := NewMenuFeed(newFixture(nil, nil, nil).catalog)
	ok, broken := &fakeWatchable{}, &fakeWatchable{err: errBoom}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := feed.Watch(ctx, 10*time.Millisecond, ok, broken)
	defer stop()

	if !ok.stopped {
		t.Fatal("earlier subscriptions should be closed on fallback")
	}
	select {
	case <-feed.refresh:
	case <-time.After(2 * time.Second):
		t.Fatal("polling should request refreshes")
	}
}

func TestMenuFeedWatchPollsAfterStreamFailure(t *testing.T) {
	feed := NewMenuFeed(newFixture(nil, nil, nil).catalog)
	products, combos := &fakeWatchable{}, &fakeWatchable{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := feed.Watch(ctx, 10*time.Millisecond, products, combos)
	defer stop()

	products.onError(errBoom)
	products.onError(errBoom)

	combos.mu.Lock()
	closed := combos.stopped
	combos.mu.Unlock()
	if !closed {
		t.Fatal("remaining subscriptions should be closed on fallback")
	}

	// one refresh right away, then the ticker keeps asking
	for i := 0; i < 2; i++ {
		select {
		case <-feed.refresh:
		case <-time.After(2 * time.Second):
			t.Fatalf("polling should request refreshes (round %d)", i)
		}
	}
}
